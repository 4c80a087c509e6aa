package constants

import "errors"

// Configuration errors.
var (
	ErrUnknownConfigKey = errors.New("unknown configuration key")
	ErrNoToken          = errors.New("no access token configured, use --token, GHC_TOKEN or 'ghc config set token'")
	ErrInvalidOutput    = errors.New("invalid output format")
)

// Command errors.
var (
	ErrNoPathGiven       = errors.New("no resource path given")
	ErrInvalidHeader     = errors.New("header must be in Name:Value form")
	ErrInvalidQuery      = errors.New("query parameter must be in key=value form")
	ErrTagOrLatest       = errors.New("either --tag or --latest is required")
	ErrNoAssetsMatched   = errors.New("no assets matched")
	ErrEventsUnavailable = errors.New("event publisher is not connected")
)
