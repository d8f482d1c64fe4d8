package gbx

import (
	"context"

	"github.com/marmos91/gbxremote/internal/xmlrpc"
)

// ServerBuildInfo is the response shape of GetVersion.
type ServerBuildInfo struct {
	Name    string `xmlrpc:"Name"`
	Version string `xmlrpc:"Version"`
	Build   string `xmlrpc:"Build"`
}

// serverAPIVersion and scriptAPIVersion are the pinned protocol versions
// this transport speaks. Bumping either requires reviewing the callback
// and call-response shapes this package decodes.
const (
	serverAPIVersion = "2023-04-24"
	scriptAPIVersion = "3.3.0"
)

// Authenticate logs in with the given credentials, the first call any
// session must make before anything else succeeds. The server is never
// documented to fault on a call this early, so a Fault is treated as a
// protocol bug rather than data the caller must branch on.
func (cl *Client) Authenticate(ctx context.Context, username, password string) error {
	var ok bool
	return cl.CallTypedExpect(ctx, xmlrpc.Call{
		Name: "Authenticate",
		Args: []xmlrpc.Value{xmlrpc.NewString(username), xmlrpc.NewString(password)},
	}, &ok)
}

// SetAPIVersion pins the session to the server API version this package
// was built against.
func (cl *Client) SetAPIVersion(ctx context.Context) error {
	var ok bool
	return cl.CallTypedExpect(ctx, xmlrpc.Call{
		Name: "SetApiVersion",
		Args: []xmlrpc.Value{xmlrpc.NewString(serverAPIVersion)},
	}, &ok)
}

// EnableCallbacks toggles whether the server emits ManiaPlanet/TrackMania
// callbacks on this connection at all.
func (cl *Client) EnableCallbacks(ctx context.Context, enable bool) error {
	var ok bool
	return cl.CallTypedExpect(ctx, xmlrpc.Call{
		Name: "EnableCallbacks",
		Args: []xmlrpc.Value{xmlrpc.NewBool(enable)},
	}, &ok)
}

// GetVersion returns the dedicated server's name, API version and build.
func (cl *Client) GetVersion(ctx context.Context) (ServerBuildInfo, error) {
	var info ServerBuildInfo
	err := cl.CallTypedExpect(ctx, xmlrpc.Call{Name: "GetVersion"}, &info)
	return info, err
}

// Ping round-trips an empty call to measure latency and liveness.
func (cl *Client) Ping(ctx context.Context) (*xmlrpc.Fault, error) {
	var ok bool
	return cl.CallTyped(ctx, xmlrpc.Call{Name: "Ping"}, &ok)
}

// AddMap appends a map (by its relative file path under Maps/) to the
// current playlist.
func (cl *Client) AddMap(ctx context.Context, filename string) (*xmlrpc.Fault, error) {
	var ok bool
	return cl.CallTyped(ctx, xmlrpc.Call{
		Name: "AddMap",
		Args: []xmlrpc.Value{xmlrpc.NewString(filename)},
	}, &ok)
}

// RemoveMap removes a map from the current playlist.
func (cl *Client) RemoveMap(ctx context.Context, filename string) (*xmlrpc.Fault, error) {
	var ok bool
	return cl.CallTyped(ctx, xmlrpc.Call{
		Name: "RemoveMap",
		Args: []xmlrpc.Value{xmlrpc.NewString(filename)},
	}, &ok)
}

// MapListEntry is one row of GetMapList's response.
type MapListEntry struct {
	UId          string `xmlrpc:"UId"`
	Name         string `xmlrpc:"Name"`
	FileName     string `xmlrpc:"FileName"`
	Author       string `xmlrpc:"Author"`
	Environnement string `xmlrpc:"Environnement"`
}

// GetMapList lists up to length maps starting at offset in the current playlist.
func (cl *Client) GetMapList(ctx context.Context, length, offset int32) ([]MapListEntry, error) {
	var entries []MapListEntry
	err := cl.CallTypedExpect(ctx, xmlrpc.Call{
		Name: "GetMapList",
		Args: []xmlrpc.Value{xmlrpc.NewInt(length), xmlrpc.NewInt(offset)},
	}, &entries)
	return entries, err
}

// CurrentMapIndex returns the index of the currently-playing map in the playlist.
func (cl *Client) CurrentMapIndex(ctx context.Context) (int32, error) {
	var idx int32
	err := cl.CallTypedExpect(ctx, xmlrpc.Call{Name: "GetCurrentMapIndex"}, &idx)
	return idx, err
}

// NextMapIndex returns the index of the map queued to play next.
func (cl *Client) NextMapIndex(ctx context.Context) (int32, error) {
	var idx int32
	err := cl.CallTypedExpect(ctx, xmlrpc.Call{Name: "GetNextMapIndex"}, &idx)
	return idx, err
}

// ChatSendServerMessage broadcasts msg to every connected player, prefixed
// as coming from the server itself.
func (cl *Client) ChatSendServerMessage(ctx context.Context, msgText string) error {
	var ok bool
	return cl.CallTypedExpect(ctx, xmlrpc.Call{
		Name: "ChatSendServerMessage",
		Args: []xmlrpc.Value{xmlrpc.NewString(msgText)},
	}, &ok)
}

// ChatSendServerMessageToLogin sends msg to a single player by login.
func (cl *Client) ChatSendServerMessageToLogin(ctx context.Context, msgText, login string) (*xmlrpc.Fault, error) {
	var ok bool
	return cl.CallTyped(ctx, xmlrpc.Call{
		Name: "ChatSendServerMessageToLogin",
		Args: []xmlrpc.Value{xmlrpc.NewString(msgText), xmlrpc.NewString(login)},
	}, &ok)
}

// KickPlayer disconnects a player, optionally reporting reason to them.
func (cl *Client) KickPlayer(ctx context.Context, login, reason string) (*xmlrpc.Fault, error) {
	var ok bool
	return cl.CallTyped(ctx, xmlrpc.Call{
		Name: "Kick",
		Args: []xmlrpc.Value{xmlrpc.NewString(login), xmlrpc.NewString(reason)},
	}, &ok)
}

// BanPlayer bans a player by login, preventing reconnection.
func (cl *Client) BanPlayer(ctx context.Context, login, reason string) (*xmlrpc.Fault, error) {
	var ok bool
	return cl.CallTyped(ctx, xmlrpc.Call{
		Name: "Ban",
		Args: []xmlrpc.Value{xmlrpc.NewString(login), xmlrpc.NewString(reason)},
	}, &ok)
}

// PlayerList returns up to length connected players starting at offset.
func (cl *Client) PlayerList(ctx context.Context, length, offset int32) ([]PlayerInfo, error) {
	var players []PlayerInfo
	err := cl.CallTypedExpect(ctx, xmlrpc.Call{
		Name: "GetPlayerList",
		Args: []xmlrpc.Value{xmlrpc.NewInt(length), xmlrpc.NewInt(offset)},
	}, &players)
	return players, err
}

// PlayerInfoByLogin returns a single player's current state.
func (cl *Client) PlayerInfoByLogin(ctx context.Context, login string) (PlayerInfo, *xmlrpc.Fault, error) {
	var info PlayerInfo
	fault, err := cl.CallTyped(ctx, xmlrpc.Call{
		Name: "GetPlayerInfo",
		Args: []xmlrpc.Value{xmlrpc.NewString(login)},
	}, &info)
	return info, fault, err
}

// ForceSpectator sets a player's spectator state. mode: 0 user selectable, 1 forced spectator, 2 forced player.
func (cl *Client) ForceSpectator(ctx context.Context, login string, mode int32) (*xmlrpc.Fault, error) {
	var ok bool
	return cl.CallTyped(ctx, xmlrpc.Call{
		Name: "ForceSpectator",
		Args: []xmlrpc.Value{xmlrpc.NewString(login), xmlrpc.NewInt(mode)},
	}, &ok)
}

// SetForcedMods pins the server's current mod set.
func (cl *Client) SetForcedMods(ctx context.Context, override bool, mods []string) (*xmlrpc.Fault, error) {
	values := make([]xmlrpc.Value, len(mods))
	for i, m := range mods {
		values[i] = xmlrpc.NewStruct(Member("Env", xmlrpc.NewString("")), Member("Url", xmlrpc.NewString(m)))
	}
	var ok bool
	return cl.CallTyped(ctx, xmlrpc.Call{
		Name: "SetForcedMods",
		Args: []xmlrpc.Value{xmlrpc.NewBool(override), xmlrpc.NewArray(values...)},
	}, &ok)
}

// SaveMatchSettings writes the current playlist and mode settings to a
// match settings file under the server's MatchSettings directory.
func (cl *Client) SaveMatchSettings(ctx context.Context, filename string) (int32, error) {
	var count int32
	err := cl.CallTypedExpect(ctx, xmlrpc.Call{
		Name: "SaveMatchSettings",
		Args: []xmlrpc.Value{xmlrpc.NewString(filename)},
	}, &count)
	return count, err
}

// LoadMatchSettings replaces the current playlist and mode settings from a
// match settings file.
func (cl *Client) LoadMatchSettings(ctx context.Context, filename string) (int32, *xmlrpc.Fault, error) {
	var count int32
	fault, err := cl.CallTyped(ctx, xmlrpc.Call{
		Name: "LoadMatchSettings",
		Args: []xmlrpc.Value{xmlrpc.NewString(filename)},
	}, &count)
	return count, fault, err
}

// ShutdownServer stops the dedicated server process.
func (cl *Client) ShutdownServer(ctx context.Context, message string) error {
	var ok bool
	return cl.CallTypedExpect(ctx, xmlrpc.Call{
		Name: "StopServer",
		Args: []xmlrpc.Value{xmlrpc.NewString(message)},
	}, &ok)
}

// GetModeScriptSettings reads the current mode script's settings as a
// struct of opaque values; callers map individual fields as needed.
func (cl *Client) GetModeScriptSettings(ctx context.Context) (xmlrpc.Value, *xmlrpc.Fault, error) {
	resp, err := cl.Call(ctx, xmlrpc.Call{Name: "GetModeScriptSettings"})
	if err != nil {
		return xmlrpc.Value{}, nil, err
	}
	if resp.IsFault() {
		return xmlrpc.Value{}, resp.Fault, nil
	}
	return resp.Value, nil, nil
}

// SetModeScriptSettings writes mode script settings back as a struct.
func (cl *Client) SetModeScriptSettings(ctx context.Context, settings xmlrpc.Value) (*xmlrpc.Fault, error) {
	var ok bool
	return cl.CallTyped(ctx, xmlrpc.Call{
		Name: "SetModeScriptSettings",
		Args: []xmlrpc.Value{settings},
	}, &ok)
}

// GetScores requests a scoreboard snapshot via the script trigger idiom:
// the response arrives asynchronously as a MapScores callback rather than
// as this call's own return value.
func (cl *Client) GetScores(ctx context.Context) error {
	return cl.TriggerCallback(ctx, "Trackmania.GetScores", nil)
}

// Member is a small helper for building struct Values inline in call sites
// that don't warrant their own named Go struct (e.g. SetForcedMods' entries).
func Member(name string, v xmlrpc.Value) xmlrpc.Member {
	return xmlrpc.Member{Name: name, Value: v}
}
