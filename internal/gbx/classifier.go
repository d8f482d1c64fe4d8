package gbx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marmos91/gbxremote/internal/logger"
	"github.com/marmos91/gbxremote/internal/xmlrpc"
	"github.com/marmos91/gbxremote/pkg/metrics"
)

// classifyKind identifies the outcome of classifying one inbound callback
// frame: did it produce an event to forward, and does it correlate to a
// pending trigger_callback wait.
type classifyKind int

const (
	callbackUnprompted classifyKind = iota
	callbackPrompted
	callbackDropped
)

type classifyResult struct {
	kind       classifyKind
	callback   Callback
	responseID string
	err        error
}

// classifier matches an inbound Call by method name to a typed Callback,
// distinguishing "regular" callbacks (ManiaPlanet./TrackMania. prefixed,
// fixed positional argument shape) from "script" callbacks carried inside
// ManiaPlanet.ModeScriptCallbackArray (JSON-string-encoded inner args).
//
// A recognised name with an unexpected argument shape is a fatal schema
// drift: it returns a dropped result but logs at error level, since the
// caller has no typed value to propagate and cannot safely continue
// assuming its model of the wire format is accurate.
type classifier struct {
	metrics metrics.RPCMetrics
}

func newClassifier(m metrics.RPCMetrics) *classifier {
	return &classifier{metrics: m}
}

func (c *classifier) classify(ctx context.Context, call xmlrpc.Call) classifyResult {
	logger.DebugCtx(ctx, "classifying callback", logger.CallbackName(call.Name), logger.ArgCount(len(call.Args)))

	if call.Name == "ManiaPlanet.ModeScriptCallbackArray" {
		return c.classifyScript(ctx, call)
	}
	return c.classifyRegular(ctx, call)
}

func (c *classifier) classifyRegular(ctx context.Context, call xmlrpc.Call) classifyResult {
	args := call.Args

	switch call.Name {
	case "ManiaPlanet.EndMatch":
		if shape(args, xmlrpc.KindArray, xmlrpc.KindInt) {
			return c.emit(call.Name, Callback{Kind: CallbackRaceEnd, Name: call.Name})
		}

	case "ManiaPlanet.MapListModified":
		if shape(args, xmlrpc.KindInt, xmlrpc.KindInt, xmlrpc.KindBool) {
			var currIdx *int32
			if args[0].Int >= 0 {
				v := args[0].Int
				currIdx = &v
			}
			return c.emit(call.Name, Callback{
				Kind: CallbackPlaylistChanged, Name: call.Name,
				PlaylistChanged: PlaylistChanged{CurrIdx: currIdx, NextIdx: args[1].Int},
			})
		}

	case "ManiaPlanet.PlayerChat":
		if shape(args, xmlrpc.KindInt, xmlrpc.KindString, xmlrpc.KindString, xmlrpc.KindBool) {
			return c.emit(call.Name, Callback{
				Kind: CallbackPlayerChat, Name: call.Name,
				PlayerChat: PlayerChat{FromUID: args[0].Int, FromLogin: args[1].String, Message: args[2].String},
			})
		}

	case "ManiaPlanet.PlayerDisconnect":
		if shape(args, xmlrpc.KindString, xmlrpc.KindString) {
			return c.emit(call.Name, Callback{
				Kind: CallbackPlayerDisconnect, Name: call.Name,
				PlayerDisconnect: PlayerDisconnect{Login: args[0].String},
			})
		}

	case "ManiaPlanet.PlayerInfoChanged":
		if shape(args, xmlrpc.KindStruct) {
			var info PlayerInfo
			if err := xmlrpc.FromValue(args[0], &info); err != nil {
				return c.fatalShape(ctx, call, err)
			}
			return c.emit(call.Name, Callback{Kind: CallbackPlayerInfoChanged, Name: call.Name, PlayerInfoChanged: PlayerInfoChanged{Info: info}})
		}

	case "ManiaPlanet.PlayerManialinkPageAnswer":
		if shape(args, xmlrpc.KindInt, xmlrpc.KindString, xmlrpc.KindString, xmlrpc.KindArray) {
			entries := make(map[string]string, len(args[3].Array))
			for _, ev := range args[3].Array {
				name, ok1 := ev.Get("Name")
				value, ok2 := ev.Get("Value")
				if !ok1 || !ok2 || name.Kind != xmlrpc.KindString || value.Kind != xmlrpc.KindString {
					return c.fatalShape(ctx, call, fmt.Errorf("manialink entry missing Name/Value"))
				}
				entries[name.String] = value.String
			}
			return c.emit(call.Name, Callback{
				Kind: CallbackPlayerAnswered, Name: call.Name,
				PlayerAnswered: PlayerAnswered{
					FromUID: args[0].Int, FromLogin: args[1].String,
					Answer: PlayerAnswer{Answer: args[2].String, Entries: entries},
				},
			})
		}

	case "ManiaPlanet.BeginMap", "ManiaPlanet.BeginMatch", "ManiaPlanet.EndMap",
		"ManiaPlanet.StatusChanged", "TrackMania.PlayerCheckpoint", "TrackMania.PlayerFinish",
		"TrackMania.PlayerIncoherence", "ManiaPlanet.PlayerConnect":
		return classifyResult{kind: callbackDropped}

	default:
		logger.WarnCtx(ctx, "ignored callback", logger.CallbackName(call.Name))
		return classifyResult{kind: callbackDropped}
	}

	return c.fatalShape(ctx, call, fmt.Errorf("unexpected argument shape"))
}

func (c *classifier) classifyScript(ctx context.Context, call xmlrpc.Call) classifyResult {
	if !shape(call.Args, xmlrpc.KindString, xmlrpc.KindArray) {
		return c.fatalShape(ctx, call, fmt.Errorf("unexpected signature for ModeScriptCallbackArray"))
	}

	innerName := call.Args[0].String
	valueArgs := call.Args[1].Array

	strArgs := make([]string, len(valueArgs))
	for i, v := range valueArgs {
		if v.Kind != xmlrpc.KindString {
			return c.fatalShape(ctx, call, fmt.Errorf("expected only string args for %s", innerName))
		}
		strArgs[i] = v.String
	}

	switch innerName {
	case "Maniaplanet.LoadingMap_Start":
		var data struct {
			Restarted bool `json:"restarted"`
		}
		if err := decodeJSONArg(strArgs, 0, &data); err != nil {
			return c.fatalShape(ctx, call, err)
		}
		return c.emitScript(innerName, Callback{Kind: CallbackMapLoad, Name: innerName, MapLoad: MapLoad{IsRestart: data.Restarted}}, "")

	case "Maniaplanet.UnloadingMap_Start":
		return c.emitScript(innerName, Callback{Kind: CallbackMapUnload, Name: innerName}, "")

	case "Trackmania.Event.StartLine":
		var data struct {
			Login string `json:"login"`
		}
		if err := decodeJSONArg(strArgs, 0, &data); err != nil {
			return c.fatalShape(ctx, call, err)
		}
		return c.emitScript(innerName, Callback{Kind: CallbackRunStartline, Name: innerName, RunStartline: RunStartline{PlayerLogin: data.Login}}, "")

	case "Trackmania.Event.WayPoint":
		var event map[string]interface{}
		if err := decodeJSONArg(strArgs, 0, &event); err != nil {
			return c.fatalShape(ctx, call, err)
		}
		return c.emitScript(innerName, Callback{Kind: CallbackRunCheckpoint, Name: innerName, RunCheckpoint: RunCheckpoint{Event: event}}, "")

	case "Trackmania.Scores":
		var scores Scores
		if err := decodeJSONArg(strArgs, 0, &scores); err != nil {
			return c.fatalShape(ctx, call, err)
		}
		return c.emitScript(innerName, Callback{Kind: CallbackMapScores, Name: innerName, MapScores: MapScores{Scores: scores}}, scores.ResponseID)

	case "Maniaplanet.ChannelProgression_End", "Maniaplanet.ChannelProgression_Start",
		"Maniaplanet.EndMap_End", "Maniaplanet.EndMap_Start", "Maniaplanet.EndMatch_End",
		"Maniaplanet.EndMatch_Start", "Maniaplanet.EndPlayLoop", "Maniaplanet.EndRound_End",
		"Maniaplanet.EndRound_Start", "Maniaplanet.EndTurn_End", "Maniaplanet.EndTurn_Start",
		"Maniaplanet.LoadingMap_End", "Maniaplanet.Podium_End", "Maniaplanet.Podium_Start",
		"Maniaplanet.StartMap_End", "Maniaplanet.StartMap_Start", "Maniaplanet.StartMatch_End",
		"Maniaplanet.StartMatch_Start", "Maniaplanet.StartPlayLoop", "Maniaplanet.StartRound_End",
		"Maniaplanet.StartRound_Start", "Maniaplanet.StartServer_End", "Maniaplanet.StartTurn_End",
		"Maniaplanet.StartTurn_Start", "Maniaplanet.UnloadingMap_End", "Trackmania.Event.GiveUp",
		"Trackmania.Event.OnPlayerAdded", "Trackmania.Event.OnPlayerRemoved", "Trackmania.Event.Respawn",
		"Trackmania.Event.StartCountdown", "Trackmania.Event.Stunt", "Maniaplanet.StartServer_Start",
		"LibXmlRpc_MethodCall", "LibXmlRpc_MethodResponse", "LibXmlRpc_ClientUnknown":
		return classifyResult{kind: callbackDropped}

	default:
		if isStatisticsHeartbeat(innerName) {
			return classifyResult{kind: callbackDropped}
		}
		logger.WarnCtx(ctx, "ignored script callback", logger.ScriptName(innerName))
		return classifyResult{kind: callbackDropped}
	}
}

func isStatisticsHeartbeat(name string) bool {
	const prefix = "Statistics_"
	return len(name) > len(prefix) && name[:len(prefix)] == prefix
}

func (c *classifier) emit(name string, cb Callback) classifyResult {
	if c.metrics != nil {
		c.metrics.RecordCallback(name)
	}
	return classifyResult{kind: callbackUnprompted, callback: cb}
}

func (c *classifier) emitScript(name string, cb Callback, responseID string) classifyResult {
	if c.metrics != nil {
		c.metrics.RecordScriptCallback(name, responseID != "")
	}
	if responseID == "" {
		return classifyResult{kind: callbackUnprompted, callback: cb}
	}
	return classifyResult{kind: callbackPrompted, callback: cb, responseID: responseID}
}

func (c *classifier) fatalShape(ctx context.Context, call xmlrpc.Call, err error) classifyResult {
	wrapped := &ProtocolError{Stage: "classify", Err: fmt.Errorf("%s: %w", call.Name, err)}
	logger.ErrorCtx(ctx, "callback shape mismatch", logger.CallbackName(call.Name), logger.Err(wrapped))
	if c.metrics != nil {
		c.metrics.RecordDecodeError("classify")
	}
	return classifyResult{kind: callbackDropped, err: wrapped}
}

func shape(args []xmlrpc.Value, kinds ...xmlrpc.Kind) bool {
	if len(args) != len(kinds) {
		return false
	}
	for i, k := range kinds {
		if args[i].Kind != k {
			return false
		}
	}
	return true
}

func decodeJSONArg(strArgs []string, idx int, out interface{}) error {
	if idx >= len(strArgs) {
		return fmt.Errorf("missing script callback argument at index %d", idx)
	}
	if err := json.Unmarshal([]byte(strArgs[idx]), out); err != nil {
		return fmt.Errorf("decode script callback json: %w", err)
	}
	return nil
}
