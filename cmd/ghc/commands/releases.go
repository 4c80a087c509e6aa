package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/ghclient/internal/constants"
	"github.com/fivetwenty-io/ghclient/internal/releases"
	"github.com/spf13/cobra"
)

type releaseSelector struct {
	tag        string
	latest     bool
	prerelease bool
}

func (s *releaseSelector) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.tag, "tag", "", "release tag")
	cmd.Flags().BoolVar(&s.latest, "latest", false, "use the release with the highest version tag")
	cmd.Flags().BoolVar(&s.prerelease, "prerelease", false, "let --latest pick prereleases")
}

func (s *releaseSelector) resolve(ctx context.Context, service *releases.Service, owner, repo string) (*releases.Release, error) {
	switch {
	case s.tag != "":
		return service.ByTag(ctx, owner, repo, s.tag)
	case s.latest:
		return service.Latest(ctx, owner, repo, s.prerelease)
	default:
		return nil, constants.ErrTagOrLatest
	}
}

// releaseSession is everything a release subcommand needs.
type releaseSession struct {
	service *releases.Service
	owner   string
	repo    string
	format  string
	close   func()
}

func openReleaseSession(cmd *cobra.Command, repository string, withEvents bool) (*releaseSession, error) {
	format, err := outputFormat()
	if err != nil {
		return nil, err
	}

	owner, repo, err := releases.ParseRepository(repository)
	if err != nil {
		return nil, err
	}

	ghClient, logger, err := CreateClient(cmd.Context(), constants.DownloadHTTPTimeout)
	if err != nil {
		return nil, err
	}

	opts := []releases.Option{releases.WithLogger(logger)}
	closeFn := func() {}

	if withEvents {
		publisher, err := createPublisher(logger)
		if err != nil {
			return nil, err
		}

		opts = append(opts, releases.WithPublisher(publisher))
		closeFn = func() {
			err := publisher.Close()
			if err != nil {
				logger.Warn("failed to close event publisher", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	return &releaseSession{
		service: releases.NewService(ghClient, opts...),
		owner:   owner,
		repo:    repo,
		format:  format,
		close:   closeFn,
	}, nil
}

// NewReleasesCommand creates the releases command group.
func NewReleasesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "releases",
		Aliases: []string{"release", "rel"},
		Short:   "Manage repository releases",
		Long:    "List releases and download, upload or delete their assets",
	}

	cmd.AddCommand(newReleasesListCommand())
	cmd.AddCommand(newReleasesShowCommand())
	cmd.AddCommand(newReleasesDownloadCommand())
	cmd.AddCommand(newReleasesUploadCommand())
	cmd.AddCommand(newReleasesDeleteAssetCommand())

	return cmd
}

func newReleasesListCommand() *cobra.Command {
	var sortByVersion bool

	cmd := &cobra.Command{
		Use:   "list OWNER/REPO",
		Short: "List releases",
		Long:  "List the releases of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openReleaseSession(cmd, args[0], false)
			if err != nil {
				return err
			}
			defer session.close()

			list, err := session.service.List(cmd.Context(), session.owner, session.repo)
			if err != nil {
				return err
			}

			if sortByVersion {
				releases.SortByVersion(list)
			}

			renderer := newRenderer(cmd.OutOrStdout(), func(list []releases.Release) error {
				return releasesTable(cmd.OutOrStdout(), list)
			})

			return renderer.Render(list, session.format)
		},
	}

	cmd.Flags().BoolVar(&sortByVersion, "sort", false, "sort by descending version tag")

	return cmd
}

func newReleasesShowCommand() *cobra.Command {
	selector := &releaseSelector{}

	cmd := &cobra.Command{
		Use:   "show OWNER/REPO",
		Short: "Show a release",
		Long:  "Display a release and its assets, selected by --tag or --latest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openReleaseSession(cmd, args[0], false)
			if err != nil {
				return err
			}
			defer session.close()

			release, err := selector.resolve(cmd.Context(), session.service, session.owner, session.repo)
			if err != nil {
				return err
			}

			renderer := newRenderer(cmd.OutOrStdout(), func(release *releases.Release) error {
				return releaseDetailTable(cmd.OutOrStdout(), release)
			})

			return renderer.Render(release, session.format)
		},
	}

	selector.addFlags(cmd)

	return cmd
}

func newReleasesDownloadCommand() *cobra.Command {
	var (
		selector = &releaseSelector{}
		patterns []string
		dir      string
		retries  int
	)

	cmd := &cobra.Command{
		Use:   "download OWNER/REPO",
		Short: "Download release assets",
		Long:  "Download the assets of a release whose names match --pattern (all by default)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openReleaseSession(cmd, args[0], true)
			if err != nil {
				return err
			}
			defer session.close()

			ctx := cmd.Context()

			release, err := selector.resolve(ctx, session.service, session.owner, session.repo)
			if err != nil {
				return err
			}

			matched, err := releases.MatchAssets(release, patterns)
			if err != nil {
				return err
			}

			if len(matched) == 0 {
				return fmt.Errorf("%w in %s", constants.ErrNoAssetsMatched, release.TagName)
			}

			progress := newProgressLines(cmd.ErrOrStderr())

			var downloaded []releases.DownloadedAsset

			err = releases.Retry(ctx, retries, func(ctx context.Context) error {
				var err error

				downloaded, err = session.service.DownloadAssets(ctx, session.owner, session.repo, release, dir, &releases.DownloadOptions{
					Patterns: patterns,
					Progress: func(asset releases.Asset, written, total int64) {
						progress.Update(asset.Name, written, total)
					},
				})

				return err
			}, nil)
			if err != nil {
				return err
			}

			renderer := newRenderer(cmd.OutOrStdout(), func(downloaded []releases.DownloadedAsset) error {
				for _, item := range downloaded {
					printSuccess(cmd.OutOrStdout(), "Downloaded %s (%s) to %s", item.Asset.Name, formatBytes(item.BytesWritten), item.Filename)
				}

				return nil
			})

			return renderer.Render(downloaded, session.format)
		},
	}

	selector.addFlags(cmd)
	cmd.Flags().StringArrayVarP(&patterns, "pattern", "p", nil, "asset name glob, may be repeated")
	cmd.Flags().StringVarP(&dir, "dir", "D", ".", "destination directory")
	cmd.Flags().IntVar(&retries, "retries", constants.LowRetryMax, "attempts on connection errors")

	return cmd
}

func newReleasesUploadCommand() *cobra.Command {
	var (
		tag         string
		name        string
		label       string
		contentType string
	)

	cmd := &cobra.Command{
		Use:   "upload OWNER/REPO FILE...",
		Short: "Upload release assets",
		Long:  "Attach one or more files to the release tagged --tag",
		Args:  cobra.MinimumNArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tag == "" {
				return constants.ErrTagOrLatest
			}

			session, err := openReleaseSession(cmd, args[0], true)
			if err != nil {
				return err
			}
			defer session.close()

			ctx := cmd.Context()

			release, err := session.service.ByTag(ctx, session.owner, session.repo, tag)
			if err != nil {
				return err
			}

			files := args[1:]
			if name != "" && len(files) > 1 {
				printWarning(cmd.ErrOrStderr(), "--name ignored for multiple files")

				name = ""
			}

			uploaded := make([]releases.Asset, 0, len(files))

			for _, file := range files {
				asset, err := session.service.UploadAsset(ctx, session.owner, session.repo, release, file, &releases.UploadOptions{
					Name:        name,
					Label:       label,
					ContentType: contentType,
				})
				if err != nil {
					return err
				}

				uploaded = append(uploaded, *asset)
			}

			renderer := newRenderer(cmd.OutOrStdout(), func(uploaded []releases.Asset) error {
				return assetsTable(cmd.OutOrStdout(), uploaded)
			})

			return renderer.Render(uploaded, session.format)
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "release tag")
	cmd.Flags().StringVar(&name, "name", "", "asset name (defaults to the file name)")
	cmd.Flags().StringVar(&label, "label", "", "asset label")
	cmd.Flags().StringVar(&contentType, "content-type", "", "asset content type")

	return cmd
}

func newReleasesDeleteAssetCommand() *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "delete-asset OWNER/REPO ASSET",
		Short: "Delete a release asset",
		Long:  "Delete an asset given by numeric id, or by name together with --tag",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openReleaseSession(cmd, args[0], true)
			if err != nil {
				return err
			}
			defer session.close()

			ctx := cmd.Context()

			assetID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				if tag == "" {
					return constants.ErrTagOrLatest
				}

				release, err := session.service.ByTag(ctx, session.owner, session.repo, tag)
				if err != nil {
					return err
				}

				asset, err := releases.FindAsset(release, args[1])
				if err != nil {
					return err
				}

				assetID = asset.ID
			}

			err = session.service.DeleteAsset(ctx, session.owner, session.repo, assetID)
			if err != nil {
				return err
			}

			printSuccess(cmd.OutOrStdout(), "Deleted asset %d", assetID)

			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "release tag, required when ASSET is a name")

	return cmd
}

func releasesTable(w io.Writer, list []releases.Release) error {
	rows := make([][]string, 0, len(list))
	for _, release := range list {
		rows = append(rows, []string{
			release.TagName,
			valueOrNA(release.Name),
			releaseState(&release),
			strconv.Itoa(len(release.Assets)),
			formatTime(release.PublishedAt.IsZero(), release.PublishedAt.Format("2006-01-02")),
		})
	}

	return renderTable(w, []string{"Tag", "Name", "State", "Assets", "Published"}, rows)
}

func releaseDetailTable(w io.Writer, release *releases.Release) error {
	err := renderTable(w, []string{"Property", "Value"}, [][]string{
		{"ID", strconv.FormatInt(release.ID, 10)},
		{"Tag", release.TagName},
		{"Name", valueOrNA(release.Name)},
		{"State", releaseState(release)},
		{"URL", valueOrNA(release.HTMLURL)},
	})
	if err != nil {
		return err
	}

	return assetsTable(w, release.Assets)
}

func assetsTable(w io.Writer, assets []releases.Asset) error {
	rows := make([][]string, 0, len(assets))
	for _, asset := range assets {
		rows = append(rows, []string{
			strconv.FormatInt(asset.ID, 10),
			asset.Name,
			formatBytes(asset.Size),
			valueOrNA(asset.ContentType),
			strconv.FormatInt(asset.DownloadCount, 10),
		})
	}

	return renderTable(w, []string{"ID", "Asset", "Size", "Type", "Downloads"}, rows)
}

func releaseState(release *releases.Release) string {
	switch {
	case release.Draft:
		return "draft"
	case release.Prerelease:
		return "prerelease"
	default:
		return "published"
	}
}

func formatTime(zero bool, formatted string) string {
	if zero {
		return constants.NotAvailable
	}

	return formatted
}
