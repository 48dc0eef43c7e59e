// Package cli provides the interactive trophy shop command-line client.
//
// Anyone can browse categories, products and the gallery; full listings are
// served from a local SQLite cache that an admin write on this machine
// invalidates immediately. After "login" an admin can add, edit, delete and
// reorder records and attach images, which go through the server's upload
// staging area before being promoted to permanent storage.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
