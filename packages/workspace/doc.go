// Package workspace manages the directory of request files a user works in:
// listing it as a tree, reading and writing files, and watching it for
// changes. Storage goes through afero so the same code runs against the
// local disk and an in-memory filesystem.
package workspace
