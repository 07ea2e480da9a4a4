// Package storage persists finished assessments: report PDFs go to a
// Google Cloud Storage bucket over its S3 interoperability endpoint and
// assessment records go to Firestore.
package storage
