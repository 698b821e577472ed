// Package utils provides small helpers shared by the entity adapters for
// optional (nullable) columns.
package utils
