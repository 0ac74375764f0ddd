package daemon

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"refremote/internal/settings"
)

// NoticeInfo is a user-facing notice produced while storing settings.
type NoticeInfo struct {
	Title   string
	Message string
}

// StoreReply is the decoded StoreSettings response.
type StoreReply struct {
	Values                settings.Values
	PortChanged           bool
	RestartRequired       bool
	Listening             bool
	AbbreviationsReloaded bool
	Notices               []NoticeInfo
}

// StatusReply is the decoded Status response.
type StatusReply struct {
	PID              int
	Listening        bool
	ListenerPort     int
	RemoteEnabled    bool
	RemotePort       int
	PrefsPath        string
	AbbreviationList string
	InboxSize        int
}

// InboxMessage is an OPEN request received by the remote listener.
type InboxMessage struct {
	ID         string
	Args       []string
	ReceivedAt time.Time
}

func valuesMap(v settings.Values) map[string]any {
	return map[string]any{
		"use_remote_server":            v.UseRemoteServer,
		"remote_server_port":           v.RemoteServerPort,
		"use_ieee_abbreviations":       v.UseIEEEAbbreviations,
		"use_case_keeper_on_search":    v.UseCaseKeeperOnSearch,
		"use_unit_formatter_on_search": v.UseUnitFormatterOnSearch,
	}
}

// EncodeValues converts form values to their wire form.
func EncodeValues(v settings.Values) (*structpb.Struct, error) {
	return structpb.NewStruct(valuesMap(v))
}

// DecodeValues reads form values; missing fields stay zero.
func DecodeValues(s *structpb.Struct) settings.Values {
	return settings.Values{
		UseRemoteServer:          getBool(s, "use_remote_server"),
		RemoteServerPort:         getString(s, "remote_server_port"),
		UseIEEEAbbreviations:     getBool(s, "use_ieee_abbreviations"),
		UseCaseKeeperOnSearch:    getBool(s, "use_case_keeper_on_search"),
		UseUnitFormatterOnSearch: getBool(s, "use_unit_formatter_on_search"),
	}
}

// EncodeStoreReply converts a StoreReply to its wire form.
func EncodeStoreReply(r StoreReply) (*structpb.Struct, error) {
	notices := make([]any, 0, len(r.Notices))
	for _, n := range r.Notices {
		notices = append(notices, map[string]any{"title": n.Title, "message": n.Message})
	}
	return structpb.NewStruct(map[string]any{
		"values":                 valuesMap(r.Values),
		"port_changed":           r.PortChanged,
		"restart_required":       r.RestartRequired,
		"listening":              r.Listening,
		"abbreviations_reloaded": r.AbbreviationsReloaded,
		"notices":                notices,
	})
}

// DecodeStoreReply reads a StoreSettings response.
func DecodeStoreReply(s *structpb.Struct) StoreReply {
	r := StoreReply{
		Values:                DecodeValues(s.GetFields()["values"].GetStructValue()),
		PortChanged:           getBool(s, "port_changed"),
		RestartRequired:       getBool(s, "restart_required"),
		Listening:             getBool(s, "listening"),
		AbbreviationsReloaded: getBool(s, "abbreviations_reloaded"),
	}
	for _, v := range s.GetFields()["notices"].GetListValue().GetValues() {
		n := v.GetStructValue()
		r.Notices = append(r.Notices, NoticeInfo{Title: getString(n, "title"), Message: getString(n, "message")})
	}
	return r
}

// EncodeStatus converts a StatusReply to its wire form.
func EncodeStatus(r StatusReply) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"pid":               r.PID,
		"listening":         r.Listening,
		"listener_port":     r.ListenerPort,
		"remote_enabled":    r.RemoteEnabled,
		"remote_port":       r.RemotePort,
		"prefs_path":        r.PrefsPath,
		"abbreviation_list": r.AbbreviationList,
		"inbox_size":        r.InboxSize,
	})
}

// DecodeStatus reads a Status response.
func DecodeStatus(s *structpb.Struct) StatusReply {
	return StatusReply{
		PID:              getInt(s, "pid"),
		Listening:        getBool(s, "listening"),
		ListenerPort:     getInt(s, "listener_port"),
		RemoteEnabled:    getBool(s, "remote_enabled"),
		RemotePort:       getInt(s, "remote_port"),
		PrefsPath:        getString(s, "prefs_path"),
		AbbreviationList: getString(s, "abbreviation_list"),
		InboxSize:        getInt(s, "inbox_size"),
	}
}

// EncodeInbox converts inbox messages to their wire form.
func EncodeInbox(msgs []InboxMessage) (*structpb.Struct, error) {
	list := make([]any, 0, len(msgs))
	for _, m := range msgs {
		args := make([]any, 0, len(m.Args))
		for _, a := range m.Args {
			args = append(args, a)
		}
		list = append(list, map[string]any{
			"id":               m.ID,
			"args":             args,
			"received_at_unix": m.ReceivedAt.Unix(),
		})
	}
	return structpb.NewStruct(map[string]any{"messages": list})
}

// DecodeInbox reads an Inbox response.
func DecodeInbox(s *structpb.Struct) []InboxMessage {
	var out []InboxMessage
	for _, v := range s.GetFields()["messages"].GetListValue().GetValues() {
		m := v.GetStructValue()
		msg := InboxMessage{
			ID:         getString(m, "id"),
			ReceivedAt: time.Unix(int64(m.GetFields()["received_at_unix"].GetNumberValue()), 0),
		}
		for _, a := range m.GetFields()["args"].GetListValue().GetValues() {
			msg.Args = append(msg.Args, a.GetStringValue())
		}
		out = append(out, msg)
	}
	return out
}

func getBool(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

func getString(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func getInt(s *structpb.Struct, key string) int {
	return int(s.GetFields()[key].GetNumberValue())
}
