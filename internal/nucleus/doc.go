// Package nucleus parses target nuclide identifiers such as "Mo-94".
package nucleus
