// Package session resolves which fields a form shows for the selected
// category. A Resolver owns the master field catalog and the category to
// field map, drives the "define new category" flow, and decides when the
// field renderer has to redraw. All session types are meant to be driven from
// a single goroutine.
package session
