// Package docs parses the Razor documentation pages of the component
// library. Pages are matched with regular expressions; the parser extracts
// the documented component, the page title and description, titled sections
// and links to related components.
package docs
