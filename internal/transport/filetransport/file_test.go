/*
 *  Licensed to the Apache Software Foundation (ASF) under one
 *  or more contributor license agreements.  See the NOTICE file
 *  distributed with this work for additional information
 *  regarding copyright ownership.  The ASF licenses this file
 *  to you under the Apache License, Version 2.0 (the
 *  "License"); you may not use this file except in compliance
 *  with the License.  You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing,
 *  software distributed under the License is distributed on an
 *   * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 *  KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations
 *  under the License.
 */

package filetransport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-go/mediation-core/internal/message"
)

func TestListenerPicksUpAndDeletesFile(t *testing.T) {
	inDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.txt"), []byte("payload"), 0o644))

	l := NewListener(ListenerConfig{
		Name:        "in",
		LocationURI: fmt.Sprintf("file://%s/", inDir),
	}, nil)
	require.NoError(t, l.Init())

	var received []byte
	l.SetMessageCallback(func(msg *message.Message) (*message.Message, error) {
		received = msg.Payload
		return nil, nil
	})

	require.NoError(t, l.processOnce())
	assert.Equal(t, "payload", string(received))

	_, err := os.Stat(filepath.Join(inDir, "a.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestListenerArchivesFileOnSuccess(t *testing.T) {
	inDir := t.TempDir()
	archiveDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "b.txt"), []byte("x"), 0o644))

	l := NewListener(ListenerConfig{
		Name:               "in",
		LocationURI:        fmt.Sprintf("file://%s/", inDir),
		ArchiveLocationURI: fmt.Sprintf("file://%s/", archiveDir),
	}, nil)
	require.NoError(t, l.Init())
	l.SetMessageCallback(func(msg *message.Message) (*message.Message, error) { return nil, nil })

	require.NoError(t, l.processOnce())

	_, err := os.Stat(filepath.Join(archiveDir, "b.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(inDir, "b.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestListenerNoCallbackLeavesFileInPlace(t *testing.T) {
	inDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "c.txt"), []byte("x"), 0o644))

	l := NewListener(ListenerConfig{
		Name:        "in",
		LocationURI: fmt.Sprintf("file://%s/", inDir),
	}, nil)
	require.NoError(t, l.Init())

	assert.NoError(t, l.processOnce())
	_, err := os.Stat(filepath.Join(inDir, "c.txt"))
	assert.NoError(t, err)
}

func TestSenderCanHandle(t *testing.T) {
	s := NewSender()
	assert.True(t, s.CanHandle("file:///tmp/out.txt"))
	assert.True(t, s.CanHandle("sftp://host/out.txt"))
	assert.False(t, s.CanHandle("http://host/out.txt"))
}

func TestSenderWritesPayloadToFile(t *testing.T) {
	outDir := t.TempDir()
	outPath := filepath.Join(outDir, "out.txt")

	s := NewSender()
	msg := message.New(message.Request)
	msg.Payload = []byte("hello")

	_, err := s.Send(msg, fmt.Sprintf("file://%s", outPath))
	require.NoError(t, err)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestListenerStopBeforeStartIsNoop(t *testing.T) {
	l := NewListener(ListenerConfig{Name: "in", LocationURI: "file:///tmp/"}, nil)
	assert.NoError(t, l.Stop())
	assert.False(t, l.IsRunning())
}
