// Package types contains the records shared by the service, storage and
// compare packages.
package types
