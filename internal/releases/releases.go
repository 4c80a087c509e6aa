// Package releases lists, downloads and uploads release assets on top of
// the generic resource builder.
package releases

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/fivetwenty-io/ghclient/internal/constants"
	"github.com/fivetwenty-io/ghclient/internal/events"
	"github.com/fivetwenty-io/ghclient/pkg/gh"
)

const perPage = 100

// Service wraps a gh.Client with release-specific operations.
type Service struct {
	client    gh.Client
	publisher events.Publisher
	logger    gh.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sends an event after every transferred asset.
func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithLogger sets the logger.
func WithLogger(logger gh.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a release service.
func NewService(client gh.Client, opts ...Option) *Service {
	service := &Service{
		client:    client,
		publisher: events.NewNoOpPublisher(),
		logger:    gh.NopLogger{},
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// ParseRepository splits "owner/name".
func ParseRepository(repository string) (string, string, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != constants.RepositoryParts || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", gh.ErrInvalidRepository, repository)
	}

	return parts[0], parts[1], nil
}

func (s *Service) releases(owner, repo string) gh.Resource {
	return s.client.Repo(owner, repo).Child("releases")
}

// List returns the first page of releases, newest first as served.
func (s *Service) List(ctx context.Context, owner, repo string) ([]Release, error) {
	result, err := s.releases(owner, repo).Read(ctx, &gh.CallOptions{
		Query: map[string][]string{"per_page": {strconv.Itoa(perPage)}},
	})
	if err != nil {
		return nil, fmt.Errorf("listing releases of %s/%s: %w", owner, repo, err)
	}

	if result.Slice() == nil {
		return []Release{}, nil
	}

	var releases []Release

	err = result.Decode(&releases)
	if err != nil {
		return nil, fmt.Errorf("listing releases of %s/%s: %w", owner, repo, err)
	}

	return releases, nil
}

// ByTag returns the release whose tag_name equals tag.
func (s *Service) ByTag(ctx context.Context, owner, repo, tag string) (*Release, error) {
	releases, err := s.List(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	for i := range releases {
		if releases[i].TagName == tag {
			return &releases[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s/%s@%s", gh.ErrReleaseNotFound, owner, repo, tag)
}

// Latest returns the release with the highest semantic version tag. Drafts
// are skipped, prereleases unless includePrerelease is set, and tags that do
// not parse as versions are ignored.
func (s *Service) Latest(ctx context.Context, owner, repo string, includePrerelease bool) (*Release, error) {
	releases, err := s.List(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	latest := SelectLatest(releases, includePrerelease)
	if latest == nil {
		return nil, fmt.Errorf("%w: %s/%s has no versioned release", gh.ErrReleaseNotFound, owner, repo)
	}

	return latest, nil
}

// SelectLatest picks the highest versioned release out of releases.
func SelectLatest(releases []Release, includePrerelease bool) *Release {
	var (
		best        *Release
		bestVersion semver.Version
	)

	for i := range releases {
		release := &releases[i]
		if release.Draft || (release.Prerelease && !includePrerelease) {
			continue
		}

		version, err := semver.ParseTolerant(release.TagName)
		if err != nil {
			continue
		}

		if len(version.Pre) > 0 && !includePrerelease {
			continue
		}

		if best == nil || version.GT(bestVersion) {
			best = release
			bestVersion = version
		}
	}

	return best
}

// SortByVersion orders releases by descending version; unversioned tags
// go last in their original order.
func SortByVersion(releases []Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		left, leftErr := semver.ParseTolerant(releases[i].TagName)
		right, rightErr := semver.ParseTolerant(releases[j].TagName)

		switch {
		case leftErr != nil:
			return false
		case rightErr != nil:
			return true
		default:
			return left.GT(right)
		}
	})
}

// MatchAssets returns the assets whose name matches any of patterns
// (filepath.Match syntax). No patterns matches everything.
func MatchAssets(release *Release, patterns []string) ([]Asset, error) {
	if len(patterns) == 0 {
		return release.Assets, nil
	}

	var matched []Asset

	for _, asset := range release.Assets {
		for _, pattern := range patterns {
			ok, err := filepath.Match(pattern, asset.Name)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}

			if ok {
				matched = append(matched, asset)

				break
			}
		}
	}

	return matched, nil
}

// DownloadOptions controls DownloadAssets.
type DownloadOptions struct {
	// Patterns select assets by name; empty selects all.
	Patterns []string
	// Progress is called per chunk for each asset.
	Progress func(asset Asset, written, total int64)
}

// DownloadAssets streams the selected assets of release into dir.
func (s *Service) DownloadAssets(ctx context.Context, owner, repo string, release *Release, dir string, opts *DownloadOptions) ([]DownloadedAsset, error) {
	if opts == nil {
		opts = &DownloadOptions{}
	}

	assets, err := MatchAssets(release, opts.Patterns)
	if err != nil {
		return nil, err
	}

	err = os.MkdirAll(dir, constants.ConfigDirPerm)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	downloaded := make([]DownloadedAsset, 0, len(assets))

	for _, asset := range assets {
		item, err := s.downloadAsset(ctx, owner, repo, release, asset, dir, opts.Progress)
		if err != nil {
			return downloaded, err
		}

		downloaded = append(downloaded, *item)
	}

	return downloaded, nil
}

func (s *Service) downloadAsset(ctx context.Context, owner, repo string, release *Release, asset Asset, dir string, progress func(Asset, int64, int64)) (*DownloadedAsset, error) {
	filename := filepath.Join(dir, filepath.Base(asset.Name))

	callOpts := &gh.CallOptions{
		URL:      asset.BrowserDownloadURL,
		Filename: filename,
		Headers:  map[string]string{"Accept": constants.ContentTypeOctetStream},
	}

	if progress != nil {
		callOpts.Progress = func(written, total int64) {
			progress(asset, written, total)
		}
	}

	result, err := s.releases(owner, repo).Child("assets").ChildMany(asset.ID).Download(ctx, callOpts)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", asset.Name, err)
	}

	s.logger.Debug("asset downloaded", map[string]interface{}{
		"asset":    asset.Name,
		"filename": filename,
		"bytes":    result.BytesWritten,
	})

	s.publish(ctx, events.Event{
		Type:       events.AssetDownloaded,
		Owner:      owner,
		Repository: repo,
		Tag:        release.TagName,
		ReleaseID:  release.ID,
		AssetID:    asset.ID,
		AssetName:  asset.Name,
		Size:       result.BytesWritten,
		Filename:   filename,
	})

	return &DownloadedAsset{Asset: asset, Filename: filename, BytesWritten: result.BytesWritten}, nil
}

// UploadOptions controls UploadAsset.
type UploadOptions struct {
	// Name overrides the asset name; defaults to the file's base name.
	Name string
	// Label is the display label.
	Label string
	// ContentType defaults to the type registered for the file extension.
	ContentType string
}

// UploadAsset attaches the file at path to release. The request is routed
// to the upload host by its path.
func (s *Service) UploadAsset(ctx context.Context, owner, repo string, release *Release, path string, opts *UploadOptions) (*Asset, error) {
	if opts == nil {
		opts = &UploadOptions{}
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(path)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}

	if contentType == "" {
		contentType = constants.ContentTypeOctetStream
	}

	// Read fully so the request carries a Content-Length.
	// #nosec G304 -- the file is chosen by the caller.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	query := map[string][]string{"name": {name}}
	if opts.Label != "" {
		query["label"] = []string{opts.Label}
	}

	result, err := s.releases(owner, repo).ChildMany(release.ID).Child("assets").Create(ctx, &gh.CallOptions{
		Query:       query,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}

	var asset Asset

	err = result.Decode(&asset)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}

	s.publish(ctx, events.Event{
		Type:       events.AssetUploaded,
		Owner:      owner,
		Repository: repo,
		Tag:        release.TagName,
		ReleaseID:  release.ID,
		AssetID:    asset.ID,
		AssetName:  asset.Name,
		Size:       asset.Size,
		Filename:   path,
	})

	return &asset, nil
}

// DeleteAsset removes an asset by id.
func (s *Service) DeleteAsset(ctx context.Context, owner, repo string, assetID int64) error {
	_, err := s.releases(owner, repo).Child("assets").ChildMany(assetID).Delete(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting asset %d: %w", assetID, err)
	}

	s.publish(ctx, events.Event{
		Type:       events.AssetDeleted,
		Owner:      owner,
		Repository: repo,
		AssetID:    assetID,
	})

	return nil
}

// FindAsset returns the asset of release called name.
func FindAsset(release *Release, name string) (*Asset, error) {
	for i := range release.Assets {
		if release.Assets[i].Name == name {
			return &release.Assets[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s in %s", gh.ErrAssetNotFound, name, release.TagName)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	err := s.publisher.Publish(ctx, event)
	if err != nil {
		s.logger.Warn("failed to publish event", map[string]interface{}{
			"type":  event.Type,
			"asset": event.AssetName,
			"error": err.Error(),
		})
	}
}
