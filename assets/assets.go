// Package assets embeds the web front end sources.
package assets

import _ "embed"

// IndexTemplate is the HTML page template; it receives the minified CSS, JS
// and SVG logo.
//
//go:embed index.html.tpl
var IndexTemplate string

//go:embed style.css
var Style string

//go:embed script.js
var Script string

//go:embed logo.svg
var Logo string
