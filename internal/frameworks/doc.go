// Package frameworks models compliance framework catalogs (controls with
// descriptions, common evidence types, and points of focus) and the registry of
// official framework sources polled for updates.
package frameworks
