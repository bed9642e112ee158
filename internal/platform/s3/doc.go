// Package s3 archives downstream configurations in S3 compatible object
// storage.
//
// Objects are stored under "<master-name>/<instance-id>/<file>" in the
// configured bucket, which is created on first use.
package s3
