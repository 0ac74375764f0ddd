package daemon

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"refremote/internal/journals"
	"refremote/internal/prefs"
	"refremote/internal/remote"
	"refremote/internal/settings"
)

// service implements the control gRPC service on top of the preference store
// and the remote listener.
type service struct {
	// mu serialises every operation that touches the listener or the store.
	mu sync.Mutex

	store    *prefs.Store
	listener *remote.Listener
	inbox    *Inbox
	abbrev   *journals.Loader
	form     *settings.Form

	// notices collected during the current StoreSettings call.
	pending []remote.Notice
}

func newService(store *prefs.Store) *service {
	s := &service{
		store:    store,
		listener: remote.NewListener(),
		inbox:    NewInbox(defaultInboxCapacity),
		abbrev:   journals.NewLoader(store.Advanced().UseIEEEAbbreviations),
	}
	toggle := &remote.Toggle{
		Store:    store,
		Listener: s.listener,
		Handler:  s.inbox,
		Notifier: remote.NotifierFunc(func(n remote.Notice) {
			s.pending = append(s.pending, n)
		}),
	}
	s.form = settings.NewForm(store, toggle, s.abbrev)
	return s
}

// startFromPreferences opens the listener when the stored preference asks for it.
// A bind failure is logged; the daemon keeps serving its control socket.
func (s *service) startFromPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyRemote(s.store.Remote())
}

// applyExternal reacts to a preferences file edited outside the daemon.
func (s *service) applyExternal(rp prefs.RemotePreference, ap prefs.AdvancedPreferences) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Printf("preferences changed on disk, applying")
	if s.abbrev.ActiveList() != listFor(ap.UseIEEEAbbreviations) {
		s.abbrev.Update(ap.UseIEEEAbbreviations)
	}
	if rp.Enabled && s.listener.Running() && s.listener.Port() != rp.Port {
		log.Printf("remote port changed to %d while listening on %d; restart required", rp.Port, s.listener.Port())
	}
	s.applyRemote(rp)
}

func (s *service) applyRemote(rp prefs.RemotePreference) {
	if !rp.Enabled {
		s.listener.Stop()
		return
	}
	if err := s.listener.OpenAndStart(s.inbox, rp.Port); err != nil {
		log.Printf("remote listener unavailable: %v", err)
	}
}

func (s *service) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener.Stop()
}

func (s *service) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("pong"), nil
}

func (s *service) GetSettings(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.mu.Lock()
	v := s.form.Load()
	s.mu.Unlock()

	out, err := EncodeValues(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode settings: %v", err)
	}
	return out, nil
}

func (s *service) StoreSettings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v := DecodeValues(req)

	s.mu.Lock()
	s.pending = nil
	res, err := s.form.Store(v)
	notices := s.pending
	s.pending = nil
	current := s.form.Load()
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, remote.ErrInvalidPort) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Errorf(codes.Unavailable, "store settings: %v", err)
	}

	reply := StoreReply{
		Values:                current,
		PortChanged:           res.Remote.PortChanged,
		RestartRequired:       res.Remote.RestartRequired,
		Listening:             res.Remote.Listening,
		AbbreviationsReloaded: res.AbbreviationsReloaded,
	}
	for _, n := range notices {
		reply.Notices = append(reply.Notices, NoticeInfo{Title: n.Title, Message: n.Message})
	}
	out, err := EncodeStoreReply(reply)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	return out, nil
}

func (s *service) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.mu.Lock()
	rp := s.store.Remote()
	reply := StatusReply{
		PID:              os.Getpid(),
		Listening:        s.listener.Running(),
		ListenerPort:     s.listener.Port(),
		RemoteEnabled:    rp.Enabled,
		RemotePort:       rp.Port,
		PrefsPath:        s.store.Path(),
		AbbreviationList: s.abbrev.ActiveList(),
		InboxSize:        s.inbox.Len(),
	}
	s.mu.Unlock()

	out, err := EncodeStatus(reply)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	return out, nil
}

func (s *service) Inbox(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := EncodeInbox(s.inbox.List())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode inbox: %v", err)
	}
	return out, nil
}

func listFor(useIEEE bool) string {
	if useIEEE {
		return journals.ListIEEE
	}
	return journals.ListDefault
}
