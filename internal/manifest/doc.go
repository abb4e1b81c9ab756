// Package manifest reads and rewrites version fields of a Maven pom.xml.
//
// The pom is matched line by line rather than parsed, which keeps unrelated
// formatting byte-identical across release commits. Callers depend on the Reader
// and Writer interfaces so a structured implementation can replace POM.
package manifest
