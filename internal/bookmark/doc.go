// Package bookmark defines the bookmark tree data model and traversal.
//
// The tree mirrors the structure of a Firefox bookmarks JSON backup:
// an Entry is either a container holding an ordered list of child
// entries, or a place holding a single URI. Every field other than the
// discriminator, the URI, and the children list is opaque metadata that
// is carried through unmodified, so a filtered tree round-trips without
// losing fields this tool does not understand.
package bookmark
