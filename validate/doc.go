// Package validate holds the input checks shared by the session client and
// its front ends. Every rejection is an *Error whose text comes from a
// messages.Catalog.
package validate
