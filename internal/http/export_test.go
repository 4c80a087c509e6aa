package http

import "io"

// SetFileCreator replaces the function used to open download destinations.
func SetFileCreator(c *Client, fn func(name string) (io.WriteCloser, error)) {
	c.createFile = fn
}
