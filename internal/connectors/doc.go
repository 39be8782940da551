// Package connectors holds the sources that feed material into a study
// session. The filesystem connector watches a directory and reports files
// as they settle so the watch command can ingest them.
package connectors
