package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ghclient/pkg/gh"
)

// Resource implements gh.Resource. It is a value: every extension returns a
// new Resource and the receiver keeps its path.
type Resource struct {
	client *Client
	path   gh.ResourcePath
}

// Child implements gh.Resource.Child.
func (r Resource) Child(name string) gh.Resource {
	return Resource{client: r.client, path: r.path.Append(name)}
}

// ChildMany implements gh.Resource.ChildMany.
func (r Resource) ChildMany(ids ...interface{}) gh.Resource {
	if len(ids) == 0 {
		return r
	}

	segments := make([]string, 0, len(ids))
	for _, id := range ids {
		segments = append(segments, fmt.Sprint(id))
	}

	return Resource{client: r.client, path: r.path.Append(segments...)}
}

// Call is an alias of ChildMany.
func (r Resource) Call(args ...interface{}) gh.Resource {
	return r.ChildMany(args...)
}

// Access implements gh.Resource.Access.
func (r Resource) Access(name string) (gh.Resource, gh.Terminal) {
	if verb, ok := gh.ParseVerb(name); ok {
		return r, r.Terminal(verb)
	}

	return r.Child(name), nil
}

// Path implements gh.Resource.Path.
func (r Resource) Path() gh.ResourcePath {
	return r.path
}

// String returns the path, e.g. "/repos/octo/hello-world".
func (r Resource) String() string {
	return r.path.String()
}

// Terminal implements gh.Resource.Terminal.
func (r Resource) Terminal(verb gh.Verb) gh.Terminal {
	return boundVerb{client: r.client, path: r.path, verb: verb}
}

// Read implements gh.Resource.Read.
func (r Resource) Read(ctx context.Context, opts *gh.CallOptions) (gh.Result, error) {
	return r.invoke(ctx, gh.VerbRead, opts)
}

// Create implements gh.Resource.Create.
func (r Resource) Create(ctx context.Context, opts *gh.CallOptions) (gh.Result, error) {
	return r.invoke(ctx, gh.VerbCreate, opts)
}

// Replace implements gh.Resource.Replace.
func (r Resource) Replace(ctx context.Context, opts *gh.CallOptions) (gh.Result, error) {
	return r.invoke(ctx, gh.VerbReplace, opts)
}

// PartialUpdate implements gh.Resource.PartialUpdate.
func (r Resource) PartialUpdate(ctx context.Context, opts *gh.CallOptions) (gh.Result, error) {
	return r.invoke(ctx, gh.VerbPartialUpdate, opts)
}

// Delete implements gh.Resource.Delete.
func (r Resource) Delete(ctx context.Context, opts *gh.CallOptions) (gh.Result, error) {
	return r.invoke(ctx, gh.VerbDelete, opts)
}

// Download implements gh.Resource.Download.
func (r Resource) Download(ctx context.Context, opts *gh.CallOptions) (*gh.DownloadResult, error) {
	resp, err := r.Terminal(gh.VerbDownload).Invoke(ctx, opts)
	if resp == nil {
		return nil, err
	}

	return resp.Download, err
}

func (r Resource) invoke(ctx context.Context, verb gh.Verb, opts *gh.CallOptions) (gh.Result, error) {
	resp, err := r.Terminal(verb).Invoke(ctx, opts)
	if resp == nil {
		return gh.Result{}, err
	}

	return resp.Result, err
}

// boundVerb is a verb bound to a path, returned by Terminal and Access.
type boundVerb struct {
	client *Client
	path   gh.ResourcePath
	verb   gh.Verb
}

func (b boundVerb) Verb() gh.Verb {
	return b.verb
}

func (b boundVerb) Path() gh.ResourcePath {
	return b.path
}

// Invoke builds a fresh descriptor from opts and performs one exchange.
func (b boundVerb) Invoke(ctx context.Context, opts *gh.CallOptions) (*gh.Response, error) {
	return b.client.dispatch(ctx, gh.NewRequestDescriptor(b.verb, b.path, opts))
}

// Walk resolves names one by one through Access. A verb name is only
// accepted as the last element; the returned Terminal is nil when the last
// name is an ordinary segment.
func Walk(root gh.Resource, names ...string) (gh.Resource, gh.Terminal, error) {
	current := root

	for i, name := range names {
		next, terminal := current.Access(name)
		if terminal != nil {
			if i != len(names)-1 {
				return nil, nil, fmt.Errorf("%w: %q", gh.ErrVerbNotTerminal, name)
			}

			return next, terminal, nil
		}

		current = next
	}

	return current, nil, nil
}
