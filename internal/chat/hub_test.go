package chat_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Tyrowin/oxidechat/internal/chat"
	"github.com/Tyrowin/oxidechat/internal/domain"
	"github.com/Tyrowin/oxidechat/internal/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBroadcastReachesEveryoneButSender(t *testing.T) {
	req := require.New(t)
	hub := startHub(t, chat.BroadcastPolicy{})
	alice, bob, carol := domain.NewUserID(), domain.NewUserID(), domain.NewUserID()
	conversation := domain.NewConversationID()

	alicePipe, _ := join(t, hub, alice)
	bobPipe, _ := join(t, hub, bob)
	carolPipe, _ := join(t, hub, carol)
	req.Equal(3, hub.Online())

	alicePipe.send(t, conversation, "hi")

	for _, pipe := range []*pipeConn{bobPipe, carolPipe} {
		got := pipe.expectDistribute(t)
		req.Equal(alice, got.Sender)
		req.Equal(conversation, got.ConversationID)
		req.Equal("hi", got.Content)
	}
	alicePipe.expectNothing(t, 100*time.Millisecond)
}

func TestMessagesFromOneSenderKeepTheirOrder(t *testing.T) {
	req := require.New(t)
	hub := startHub(t, chat.BroadcastPolicy{})
	alice, bob := domain.NewUserID(), domain.NewUserID()
	conversation := domain.NewConversationID()

	alicePipe, _ := join(t, hub, alice)
	bobPipe, _ := join(t, hub, bob)

	const count = 50
	for i := 0; i < count; i++ {
		alicePipe.send(t, conversation, fmt.Sprintf("message-%d", i))
	}

	for i := 0; i < count; i++ {
		got := bobPipe.expectDistribute(t)
		req.Equal(fmt.Sprintf("message-%d", i), got.Content)
	}
}

func TestDefaultOptionsDeliverEveryMessageOfABurst(t *testing.T) {
	req := require.New(t)
	hub := chat.NewHub(testLogger(), chat.BroadcastPolicy{}, chat.DefaultOptions())
	go hub.Run()
	t.Cleanup(func() { _ = hub.Shutdown(2 * time.Second) })

	alice, bob := domain.NewUserID(), domain.NewUserID()
	conversation := domain.NewConversationID()
	alicePipe, _ := join(t, hub, alice)
	bobPipe, _ := join(t, hub, bob)

	const count = 40
	for i := 0; i < count; i++ {
		alicePipe.send(t, conversation, fmt.Sprintf("burst-%d", i))
	}

	for i := 0; i < count; i++ {
		req.Equal(fmt.Sprintf("burst-%d", i), bobPipe.expectDistribute(t).Content)
	}
}

func TestRateLimitDropsFramesBeyondBurstWhenEnabled(t *testing.T) {
	req := require.New(t)
	hub := chat.NewHub(testLogger(), chat.BroadcastPolicy{}, chat.Options{
		RateLimitBurst:  3,
		RateLimitRefill: time.Hour,
		PingPeriod:      time.Hour,
	})
	go hub.Run()
	t.Cleanup(func() { _ = hub.Shutdown(2 * time.Second) })

	alice, bob := domain.NewUserID(), domain.NewUserID()
	conversation := domain.NewConversationID()
	alicePipe, _ := join(t, hub, alice)
	bobPipe, _ := join(t, hub, bob)

	for i := 0; i < 10; i++ {
		alicePipe.send(t, conversation, fmt.Sprintf("burst-%d", i))
	}

	for i := 0; i < 3; i++ {
		req.Equal(fmt.Sprintf("burst-%d", i), bobPipe.expectDistribute(t).Content)
	}
	bobPipe.expectNothing(t, 150*time.Millisecond)
}

func TestClosedTransportIsRemovedFromRegistry(t *testing.T) {
	req := require.New(t)
	hub := startHub(t, chat.BroadcastPolicy{})
	alice, bob := domain.NewUserID(), domain.NewUserID()

	alicePipe, aliceConn := join(t, hub, alice)
	bobPipe, _ := join(t, hub, bob)

	// Peer abort: the transport goes away underneath both tasks.
	req.NoError(alicePipe.Close())
	waitFinished(t, aliceConn)

	_, ok := hub.Registry().Get(alice)
	req.False(ok)
	req.Equal(1, hub.Online())

	bobPipe.send(t, domain.NewConversationID(), "anyone there?")
	time.Sleep(100 * time.Millisecond)
	req.Error(aliceConn.Push(chat.Distribute{Sender: bob}))
	req.Empty(alicePipe.toClient)
}

func TestWriteFailureTearsDownOnlyThatConnection(t *testing.T) {
	req := require.New(t)
	hub := startHub(t, chat.BroadcastPolicy{})
	alice, bob, carol := domain.NewUserID(), domain.NewUserID(), domain.NewUserID()

	alicePipe, _ := join(t, hub, alice)
	bobPipe, bobConn := join(t, hub, bob)
	carolPipe, _ := join(t, hub, carol)
	bobPipe.failWrites.Store(true)

	alicePipe.send(t, domain.NewConversationID(), "first")
	waitFinished(t, bobConn)
	req.Equal("first", carolPipe.expectDistribute(t).Content)

	_, ok := hub.Registry().Get(bob)
	req.False(ok)

	alicePipe.send(t, domain.NewConversationID(), "second")
	req.Equal("second", carolPipe.expectDistribute(t).Content)
}

func TestBadFramesAreDroppedWithoutClosingTheConnection(t *testing.T) {
	req := require.New(t)
	hub := startHub(t, chat.BroadcastPolicy{})
	alice, bob := domain.NewUserID(), domain.NewUserID()

	alicePipe, aliceConn := join(t, hub, alice)
	bobPipe, _ := join(t, hub, bob)

	alicePipe.sendRaw(t, `{"type":"unknown"}`)
	alicePipe.sendRaw(t, `{"type":"send","payload":{"conversation_id":"c1","content":"hi"}}`)
	alicePipe.sendRaw(t, `not json at all`)
	alicePipe.sendRaw(t, `{"type":"historyfetched"}`)
	bobPipe.expectNothing(t, 150*time.Millisecond)

	select {
	case <-aliceConn.Done():
		t.Fatal("connection closed after a bad frame")
	default:
	}

	conversation := domain.NewConversationID()
	alicePipe.send(t, conversation, "still here")
	got := bobPipe.expectDistribute(t)
	req.Equal("still here", got.Content)
	req.Equal(conversation, got.ConversationID)
}

func TestReconnectDisplacesPreviousConnection(t *testing.T) {
	req := require.New(t)
	hub := startHub(t, chat.BroadcastPolicy{})
	alice, bob := domain.NewUserID(), domain.NewUserID()

	_, firstConn := join(t, hub, alice)
	secondPipe, secondConn := join(t, hub, alice)
	bobPipe, _ := join(t, hub, bob)

	waitFinished(t, firstConn)

	registered, ok := hub.Registry().Get(alice)
	req.True(ok)
	req.Same(secondConn, registered)
	req.Equal(2, hub.Online())

	bobPipe.send(t, domain.NewConversationID(), "welcome back")
	req.Equal("welcome back", secondPipe.expectDistribute(t).Content)
}

// slowCloseConn blocks in Close until released, like a transport waiting on
// a close handshake.
type slowCloseConn struct {
	*pipeConn
	closing chan struct{}
	release chan struct{}
	once    sync.Once
}

func (c *slowCloseConn) Close() error {
	c.once.Do(func() { close(c.closing) })
	<-c.release
	return c.pipeConn.Close()
}

func TestDisplacementDoesNotHoldUpShutdown(t *testing.T) {
	req := require.New(t)
	hub := chat.NewHub(testLogger(), chat.BroadcastPolicy{}, chat.Options{PingPeriod: time.Hour})
	go hub.Run()

	alice := domain.NewUserID()
	slow := &slowCloseConn{
		pipeConn: newPipeConn(),
		closing:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	_, err := hub.Join(slow, alice)
	req.NoError(err)

	go func() { _, _ = hub.Join(newPipeConn(), alice) }()
	select {
	case <-slow.closing:
	case <-time.After(2 * time.Second):
		t.Fatal("displaced connection was not closed")
	}

	shutdownDone := make(chan error, 1)
	go func() { shutdownDone <- hub.Shutdown(5 * time.Second) }()

	joined := make(chan error, 1)
	go func() {
		for {
			_, err := hub.Join(newPipeConn(), domain.NewUserID())
			if errors.Is(err, chat.ErrHubClosed) {
				joined <- err
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
	select {
	case err := <-joined:
		req.ErrorIs(err, chat.ErrHubClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown was blocked by a displaced connection closing")
	}

	close(slow.release)
	select {
	case err := <-shutdownDone:
		req.NoError(err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not finish")
	}
}

func TestConversationPolicyDeliversOnlyToResolvedReceivers(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockReceiverResolver(ctrl)

	hub := startHub(t, chat.ConversationPolicy{Resolver: resolver, Log: testLogger()})
	alice, bob, carol := domain.NewUserID(), domain.NewUserID(), domain.NewUserID()
	offline := domain.NewUserID()
	conversation := domain.NewConversationID()

	resolver.EXPECT().
		Receivers(gomock.Any(), alice, conversation).
		Return([]domain.UserID{alice, bob, offline}, nil)

	alicePipe, _ := join(t, hub, alice)
	bobPipe, _ := join(t, hub, bob)
	carolPipe, _ := join(t, hub, carol)

	alicePipe.send(t, conversation, "just for bob")
	req.Equal("just for bob", bobPipe.expectDistribute(t).Content)
	carolPipe.expectNothing(t, 100*time.Millisecond)
	alicePipe.expectNothing(t, 10*time.Millisecond)
}

func TestConversationPolicyResolverFailureDeliversToNobody(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockReceiverResolver(ctrl)

	hub := startHub(t, chat.ConversationPolicy{Resolver: resolver, Log: testLogger()})
	alice, bob := domain.NewUserID(), domain.NewUserID()
	conversation := domain.NewConversationID()

	gomock.InOrder(
		resolver.EXPECT().Receivers(gomock.Any(), alice, conversation).Return(nil, errors.New("lookup failed")),
		resolver.EXPECT().Receivers(gomock.Any(), alice, conversation).Return(nil, nil),
	)

	alicePipe, _ := join(t, hub, alice)
	bobPipe, _ := join(t, hub, bob)

	alicePipe.send(t, conversation, "lost")
	alicePipe.send(t, conversation, "also lost")
	bobPipe.expectNothing(t, 150*time.Millisecond)
}

func TestDispatcherUsesPolicyPerMessage(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	policy := mocks.NewMockPolicy(ctrl)

	hub := startHub(t, policy)
	alice, bob := domain.NewUserID(), domain.NewUserID()
	conversation := domain.NewConversationID()

	alicePipe, _ := join(t, hub, alice)
	bobPipe, bobConn := join(t, hub, bob)

	policy.EXPECT().
		Recipients(gomock.Any(), hub.Registry(), chat.Inbound{
			Sender:  alice,
			Content: chat.ChatContent{ConversationID: conversation, Content: "routed"},
		}).
		Return([]*chat.Connection{bobConn})

	alicePipe.send(t, conversation, "routed")
	req.Equal(alice, bobPipe.expectDistribute(t).Sender)
}

func TestShutdownClosesEveryConnection(t *testing.T) {
	req := require.New(t)
	hub := chat.NewHub(testLogger(), chat.BroadcastPolicy{}, chat.Options{PingPeriod: time.Hour})
	go hub.Run()

	_, first := join(t, hub, domain.NewUserID())
	_, second := join(t, hub, domain.NewUserID())

	req.NoError(hub.Shutdown(2 * time.Second))
	waitFinished(t, first)
	waitFinished(t, second)
	req.Equal(0, hub.Online())

	_, err := hub.Join(newPipeConn(), domain.NewUserID())
	req.ErrorIs(err, chat.ErrHubClosed)
	req.NoError(hub.Shutdown(time.Second))
}

func TestShutdownWithoutRun(t *testing.T) {
	hub := chat.NewHub(testLogger(), chat.BroadcastPolicy{}, chat.Options{})
	require.NoError(t, hub.Shutdown(time.Second))
}
