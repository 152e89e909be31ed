// Package blogtests scrapes a public blog through page objects: it lists post titles, reads
// the first few posts and reports their most frequent words, once per browser.
//
// The XPath locators follow the blog's current markup and break when it changes.
package blogtests
