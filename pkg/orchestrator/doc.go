// Package orchestrator drives a form binding pass: it parses every candidate
// form, enforces the one-form-per-class rule, locates and probes the class
// file each form binds to, and hands the form to a code generator together
// with a nested form resolver scoped to that form. Diagnostics are collected
// per form and the pass fails as a whole when any error was recorded.
//
// A pass is single threaded. The Orchestrator value only carries
// configuration, so separate Run calls never share registry or cache state.
package orchestrator
