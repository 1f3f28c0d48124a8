// Package validation provides centralized input validation logic.
// This includes transfer-parameter allow-listing and bucket name checks.
//
// All caller inputs are validated before any network activity so a bad
// configuration can never leave a sync half done.
package validation

import (
	"strings"

	syncerrors "github.com/brownmestizo/grunt-aws-s3/errors"
)

// allowedParams is the fixed, case-sensitive allow-list of transfer
// parameter names accepted on uploads.
var allowedParams = map[string]struct{}{
	"CacheControl":            {},
	"ContentDisposition":      {},
	"ContentEncoding":         {},
	"ContentLanguage":         {},
	"ContentLength":           {},
	"ContentMD5":              {},
	"Expires":                 {},
	"GrantFullControl":        {},
	"GrantRead":               {},
	"GrantReadACP":            {},
	"GrantWriteACP":           {},
	"Metadata":                {},
	"ServerSideEncryption":    {},
	"StorageClass":            {},
	"WebsiteRedirectLocation": {},
	"ContentType":             {},
}

// ValidateParams checks every parameter name against the allow-list.
// An unrecognized name is a fatal configuration error.
func ValidateParams(params map[string]string) error {
	for name := range params {
		if _, ok := allowedParams[name]; !ok {
			return syncerrors.NewError("validateParams", syncerrors.ErrInvalidParam).
				WithMessage("unrecognized transfer parameter " + name)
		}
	}
	return nil
}

// ValidateBucketName validates that a bucket name is present and plausibly
// DNS-compliant. The store enforces the full rule set; this catches the
// configuration errors worth failing fast on.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return syncerrors.NewConfigError("validateBucket", "bucket name cannot be empty")
	}
	if len(bucket) < 3 || len(bucket) > 63 {
		return syncerrors.NewConfigError("validateBucket", "bucket name must be 3-63 characters")
	}
	if strings.ToLower(bucket) != bucket {
		return syncerrors.NewConfigError("validateBucket", "bucket name must be lowercase")
	}
	if strings.HasPrefix(bucket, "-") || strings.HasSuffix(bucket, "-") ||
		strings.HasPrefix(bucket, ".") || strings.HasSuffix(bucket, ".") {
		return syncerrors.NewConfigError("validateBucket", "bucket name must begin and end with a letter or number")
	}
	for _, r := range bucket {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '.' {
			return syncerrors.NewConfigError("validateBucket", "bucket name contains invalid characters")
		}
	}
	return nil
}
