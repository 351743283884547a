// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package blob

import (
	"io"

	"github.com/gorse-io/slopeone/config"
	"github.com/juju/errors"
)

// Store keeps model blobs.
type Store interface {
	// Open a blob for reading. It fails with a NotFound error if the blob doesn't exist.
	Open(name string) (io.ReadCloser, error)
	// Create a blob for writing. The returned channel receives the result of the upload after
	// the writer is closed. A failed upload leaves the previous blob in place.
	Create(name string) (io.WriteCloser, <-chan error, error)
}

// NewStore creates an S3 store if an endpoint is configured and a POSIX store otherwise.
func NewStore(cfg config.BlobConfig) (Store, error) {
	if cfg.S3.Endpoint != "" {
		return NewS3(cfg.S3)
	}
	if cfg.Dir == "" {
		return nil, errors.NotAssignedf("blob directory")
	}
	return NewPOSIX(cfg.Dir), nil
}
