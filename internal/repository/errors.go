// Package repository holds the MySQL data access layer.
package repository

import "errors"

// ErrInvalidDeployment is returned when a deployment record lacks the
// fields needed to store it.
var ErrInvalidDeployment = errors.New("invalid deployment")
