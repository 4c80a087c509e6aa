// Package ghclient provides the primary entry point for constructing a
// client that implements the gh.Client interface.
//
// It layers configuration and HTTP transport on top of the path builder and
// types defined in the gh package. Most applications import ghclient to build
// a client, then address resources through Root() or Repo().
//
// Quick start
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
//
//	  // Public github.com with a personal access token.
//	  cli, err := ghclient.NewWithToken(ctx, "ghp_...")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or a GitHub Enterprise Server instance.
//	  cli, err = ghclient.New(ctx, &gh.Config{
//	    APIBaseURL:    "ghe.example.com/api/v3",
//	    UploadBaseURL: "ghe.example.com/api/uploads",
//	    AccessToken:   "ghp_...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  release, err := cli.Repo("octo", "hello-world").Child("releases").Child("latest").Read(ctx, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = release
//	}
//
// Configuration
//
// Base URLs are normalized: a trailing slash is removed and https:// is
// added when no scheme is given. Set Debug and Logger to see each request and
// response. RetryMax opts in to transport retries; by default every call is a
// single attempt.
package ghclient
