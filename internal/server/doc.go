// Package server exposes the synthesis gateway over HTTP using fiber and
// serves the single page demo UI.
package server
