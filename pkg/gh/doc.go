// Package gh provides types, interfaces, and helpers for addressing and
// invoking resources on a GitHub-style REST API.
//
// # Overview
//
// Resources are addressed by building a path one segment at a time and then
// invoking one of a closed set of terminal verbs on it. Nothing is sent until
// a verb is invoked. A concrete implementation is provided by the ghclient
// package, which wires configuration, transport and authentication.
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/ghclient/pkg/gh"
//	  "github.com/fivetwenty-io/ghclient/pkg/ghclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := ghclient.NewWithToken(ctx, "abc123")
//	  if err != nil { log.Fatal(err) }
//
//	  // GET https://api.github.com/repos/octo/hello-world/releases
//	  releases, err := cli.Root().Child("repos").ChildMany("octo", "hello-world").Child("releases").Read(ctx, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = releases
//	}
//
// # Verbs
//
// The terminal verbs are read (GET), create (POST), replace (PUT),
// partial_update (PATCH), delete (DELETE) and download (streamed GET of an
// explicit URL into a file). Resource.Access resolves names given as strings,
// intercepting only these verb names; any other name becomes a path segment.
//
// # Upload domain
//
// Paths shaped like repos/{owner}/{repo}/releases/{numeric-id}/assets are
// sent to the upload host with the request body passed through unchanged.
// Everything else goes to the API host with Data encoded as JSON.
//
// # Errors
//
// A decoded JSON object with a "message" key is returned as *APIError, even
// when the HTTP exchange itself succeeded. Bodies that are not valid JSON
// decode to an empty mapping rather than an error.
package gh
