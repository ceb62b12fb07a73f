// Package pages serves the HTML pages of the application.
//
// Templates are embedded in the binary. When web.templates_dir is set they
// are read from that directory instead, and with web.watch_templates the
// directory is watched with fsnotify and re-parsed after edits, so page
// changes show up without a restart. A template set that fails to parse
// never replaces the one being served.
//
// Pages sit outside the admission gate.
package pages
