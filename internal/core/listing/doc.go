// Package listing implements the invoice list pipeline shared by the CLI
// and the dashboard: filter a full list, slice the result into pages and
// track which rows are selected across pages.
//
// Everything here is synchronous and free of I/O. Callers own a State,
// mutate it in response to input and read back the current page.
package listing
