// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package actor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/echo/address"
	"github.com/tochemey/echo/cluster"
	gerrors "github.com/tochemey/echo/errors"
	"github.com/tochemey/echo/message"
)

// startClusteredSystem starts a system sharing backend with the other systems of the test
func startClusteredSystem(t *testing.T, backend *cluster.Memory, opts ...Option) *ActorSystem {
	t.Helper()
	return startSystem(t, append([]Option{
		WithCluster(backend.Client()),
		WithHeartbeat(50*time.Millisecond, time.Second),
		WithMessageTypes(increment{}, get{}, announcement{}),
	}, opts...)...)
}

// rawClient is a bare connection to backend used to play a peer node
func rawClient(t *testing.T, backend *cluster.Memory) *cluster.MemoryClient {
	t.Helper()
	client := backend.Client()
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})
	return client
}

// push delivers msg to the inbox of the system owning to, the way a peer does
func push(t *testing.T, client cluster.Cluster, to address.ProcessID, msg message.Message) *message.RemoteMessage {
	t.Helper()
	remote, err := message.ToRemote(msg, to, message.NewJSONSerializer(increment{}, get{}))
	require.NoError(t, err)
	pushRemote(t, client, remote)
	return remote
}

func pushRemote(t *testing.T, client cluster.Cluster, remote *message.RemoteMessage) {
	t.Helper()
	ctx := context.Background()
	data, err := remote.Encode()
	require.NoError(t, err)
	require.NoError(t, client.ListPush(ctx, inboxKey(remote.To.System()), data))
	_, err = client.Publish(ctx, notifyChannel(remote.To.System()), []byte(remote.MessageID))
	require.NoError(t, err)
}

func TestRemoting(t *testing.T) {
	t.Run("Remote systems", func(t *testing.T) {
		backend := cluster.NewMemory()
		first := startClusteredSystem(t, backend)
		second := startClusteredSystem(t, backend)

		names, err := first.RemoteSystems(context.Background())
		require.NoError(t, err)
		assert.ElementsMatch(t, []address.SystemName{first.Name(), second.Name()}, names)
	})
	t.Run("Without a cluster", func(t *testing.T) {
		system := startSystem(t)
		_, err := system.RemoteSystems(context.Background())
		require.ErrorIs(t, err, gerrors.ErrClusterNotConfigured)
	})
	t.Run("Deregistering a name shared over the cluster", func(t *testing.T) {
		backend := cluster.NewMemory()
		first := startClusteredSystem(t, backend)
		second := startClusteredSystem(t, backend)

		pid := spawnCounter(t, first, "counter", 0)
		_, err := first.Register("pool", pid)
		require.NoError(t, err)

		require.ErrorIs(t, second.DeregisterByName("nobody"), gerrors.ErrNameNotRegistered)
		require.NoError(t, second.DeregisterByName("pool"))
		_, err = second.Find("pool")
		require.ErrorIs(t, err, gerrors.ErrNameNotRegistered)
		require.ErrorIs(t, second.DeregisterByName("pool"), gerrors.ErrNameNotRegistered)
	})
	t.Run("Remote tell is delivered once", func(t *testing.T) {
		backend := cluster.NewMemory()
		system := startClusteredSystem(t, backend)
		pid := spawnCounter(t, system, "counter", 0)
		client := rawClient(t, backend)

		remote := push(t, client, pid, &message.User{Content: increment{By: 5}})
		pushRemote(t, client, remote)
		push(t, client, pid, &message.User{Content: increment{By: 100}})

		require.Eventually(t, func() bool {
			return peek(system, pid) == 105
		}, waitFor, tick)
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, 105, countOf(t, system, pid))
	})
	t.Run("Remote ask is answered through the peer inbox", func(t *testing.T) {
		ctx := context.Background()
		backend := cluster.NewMemory()
		system := startClusteredSystem(t, backend)
		pid := spawnCounter(t, system, "counter", 5)
		client := rawClient(t, backend)

		peer := address.SystemName("peer")
		require.NoError(t, client.Set(ctx, aliveKey(peer), []byte("up"), 0))
		replyTo := address.New(peer, rootName, askName)

		push(t, client, pid, &message.Request{
			Header:    message.Header{Sender: replyTo, ReplyTo: replyTo},
			RequestID: 42,
			Content:   get{},
		})

		var data []byte
		require.Eventually(t, func() bool {
			var err error
			data, err = client.ListPop(ctx, inboxKey(peer))
			return err == nil
		}, waitFor, tick)

		remote, err := message.DecodeRemoteMessage(data)
		require.NoError(t, err)
		assert.Equal(t, message.RemoteResponse, remote.Type)
		assert.EqualValues(t, 42, remote.RequestID)

		msg, err := remote.ToMessage(message.NewJSONSerializer())
		require.NoError(t, err)
		response, ok := msg.(*message.Response)
		require.True(t, ok)
		require.NoError(t, response.Err)
		assert.Equal(t, 5, response.Content)
	})
	t.Run("Remote ask to a missing process is faulted", func(t *testing.T) {
		ctx := context.Background()
		backend := cluster.NewMemory()
		system := startClusteredSystem(t, backend)
		client := rawClient(t, backend)

		peer := address.SystemName("peer")
		require.NoError(t, client.Set(ctx, aliveKey(peer), []byte("up"), 0))
		replyTo := address.New(peer, rootName, askName)

		push(t, client, system.User().Child("ghost"), &message.Request{
			Header:    message.Header{Sender: replyTo, ReplyTo: replyTo},
			RequestID: 7,
			Content:   get{},
		})

		var data []byte
		require.Eventually(t, func() bool {
			var err error
			data, err = client.ListPop(ctx, inboxKey(peer))
			return err == nil
		}, waitFor, tick)

		remote, err := message.DecodeRemoteMessage(data)
		require.NoError(t, err)
		assert.Equal(t, message.RemoteResponse, remote.Type)
		assert.NotEmpty(t, remote.Exception)
	})
	t.Run("Unknown remote system", func(t *testing.T) {
		system := startClusteredSystem(t, cluster.NewMemory())
		to := address.New("nowhere", rootName, userName, "counter")
		require.ErrorIs(t, system.Tell(to, increment{By: 1}), gerrors.ErrProcessDoesNotExist)
	})
	t.Run("Published values are mirrored on the cluster", func(t *testing.T) {
		ctx := context.Background()
		backend := cluster.NewMemory()
		system := startClusteredSystem(t, backend)
		pid, err := Spawn(system, "announcer", startingAt(0), announcer, WithFlags(RemotePublish))
		require.NoError(t, err)

		client := rawClient(t, backend)
		payloads, err := client.Subscribe(ctx, publishChannel(pid))
		require.NoError(t, err)

		require.NoError(t, system.Tell(pid, announcement{Text: "hello"}))
		select {
		case payload := <-payloads:
			var pub publication
			require.NoError(t, json.Unmarshal(payload, &pub))
			value, err := system.serializer.Unmarshal(pub.ContentType, pub.Data)
			require.NoError(t, err)
			assert.Equal(t, announcement{Text: "hello"}, value)
		case <-time.After(waitFor):
			t.Fatal("nothing mirrored")
		}
	})
	t.Run("Remote stream decodes publications", func(t *testing.T) {
		backend := cluster.NewMemory()
		source := startClusteredSystem(t, backend)
		observer := startClusteredSystem(t, backend)
		pid, err := Spawn(source, "announcer", startingAt(0), announcer, WithFlags(RemotePublish))
		require.NoError(t, err)

		stream, err := observer.remoting.stream(observer.ctx, publishChannel(pid))
		require.NoError(t, err)
		received := make(chan any, 1)
		stream.Subscribe(func(value any) { received <- value })

		require.NoError(t, source.Tell(pid, announcement{Text: "hi"}))
		select {
		case value := <-received:
			assert.Equal(t, announcement{Text: "hi"}, value)
		case <-time.After(waitFor):
			t.Fatal("nothing received")
		}
	})
}
