package common

import "fmt"

var (
	ErrFileNotFound  = fmt.Errorf("file not found")
	ErrFetchFailed   = fmt.Errorf("failed to fetch file data")
	ErrPageNotFound  = fmt.Errorf("page not found")
	ErrCacheMiss     = fmt.Errorf("cache miss")
	ErrInvalidSource = fmt.Errorf("invalid manifest source")
)
