// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at
// compile time so prompt changes ship with the binary and show up in diffs.
package assets
