package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// GetText returns the concatenated text content of a node, the
// equivalent of the DOM textContent property.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// ElementChildren returns the element children of a node in document
// order, skipping text, comment and doctype nodes. This mirrors the
// "child::*" axis, which is what positional markup scanning wants.
func ElementChildren(node *html.Node) []*html.Node {
	var out []*html.Node
	if node == nil {
		return out
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			out = append(out, child)
		}
	}
	return out
}

// AttrOr returns the value of an attribute on an element node or the
// fallback if it is absent.
func AttrOr(node *html.Node, key, fallback string) string {
	if node == nil {
		return fallback
	}
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return fallback
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText trims a scraped string and collapses inner whitespace runs,
// dropping non-printable characters the site occasionally embeds.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.Trim(s, " \t\n")
	return innerWhitespace.ReplaceAllString(s, " ")
}
