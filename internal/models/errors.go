package models

import "errors"

// ErrNoMedia means the post was reached but contains no video.
var ErrNoMedia = errors.New("No video found in this post")
