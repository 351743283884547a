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
	"path"
	"testing"

	"github.com/gorse-io/slopeone/config"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestPOSIX(t *testing.T) {
	// create client
	client := NewPOSIX(path.Join(t.TempDir(), "blob"))

	// open a missing file
	_, err := client.Open("test")
	assert.True(t, errors.Is(err, errors.NotFound))

	// write a temp file
	w, done, err := client.Create("test")
	assert.NoError(t, err)
	_, err = w.Write([]byte("hello world"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, <-done)

	// read the file
	r, err := client.Open("test")
	assert.NoError(t, err)
	content, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, "hello world", string(content))
	assert.NoError(t, r.Close())
}

func TestPOSIX_Abort(t *testing.T) {
	client := NewPOSIX(t.TempDir())
	w, done, err := client.Create("test")
	assert.NoError(t, err)
	_, err = w.Write([]byte("hello world"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, <-done)

	// an aborted write keeps the previous content
	w, done, err = client.Create("test")
	assert.NoError(t, err)
	_, err = w.Write([]byte("goodbye"))
	assert.NoError(t, err)
	pw := w.(*io.PipeWriter)
	assert.NoError(t, pw.CloseWithError(io.ErrUnexpectedEOF))
	assert.ErrorIs(t, <-done, io.ErrUnexpectedEOF)

	r, err := client.Open("test")
	assert.NoError(t, err)
	content, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, "hello world", string(content))
	assert.NoError(t, r.Close())
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(config.BlobConfig{Dir: t.TempDir()})
	assert.NoError(t, err)
	assert.IsType(t, &POSIX{}, store)

	store, err = NewStore(config.BlobConfig{S3: config.S3Config{Endpoint: "localhost:9000", Bucket: "slopeone"}})
	assert.NoError(t, err)
	assert.IsType(t, &S3{}, store)

	_, err = NewStore(config.BlobConfig{})
	assert.True(t, errors.Is(err, errors.NotAssigned))
}
