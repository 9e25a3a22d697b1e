// Package validator validates request structs through struct tags and
// reports failures as a field-to-message map keyed by snake_case names.
package validator
