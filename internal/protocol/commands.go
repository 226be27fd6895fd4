package protocol

import "fmt"

// CommandValue is the numeric command space shared by incoming Command
// messages and outgoing SendCommand payloads.
type CommandValue uint32

// Command values (verified against dongle firmware captures).
const (
	CmdInvalid           CommandValue = 0
	CmdStartRecordAudio  CommandValue = 1
	CmdStopRecordAudio   CommandValue = 2
	CmdRequestHostUI     CommandValue = 3
	CmdSiri              CommandValue = 5
	CmdMic               CommandValue = 7
	CmdFrame             CommandValue = 12
	CmdBoxMic            CommandValue = 15
	CmdEnableNightMode   CommandValue = 16
	CmdDisableNightMode  CommandValue = 17
	CmdAudioTransferOn   CommandValue = 22
	CmdAudioTransferOff  CommandValue = 23
	CmdWifi24G           CommandValue = 24
	CmdWifi5G            CommandValue = 25
	CmdLeft              CommandValue = 100
	CmdRight             CommandValue = 101
	CmdSelectDown        CommandValue = 104
	CmdSelectUp          CommandValue = 105
	CmdBack              CommandValue = 106
	CmdUp                CommandValue = 113
	CmdDown              CommandValue = 114
	CmdHome              CommandValue = 200
	CmdPlay              CommandValue = 201
	CmdPause             CommandValue = 202
	CmdPlayOrPause       CommandValue = 203
	CmdNext              CommandValue = 204
	CmdPrev              CommandValue = 205
	CmdAcceptPhone       CommandValue = 300
	CmdRejectPhone       CommandValue = 301
	CmdRequestVideoFocus CommandValue = 500
	CmdReleaseVideoFocus CommandValue = 501
	CmdWifiEnable        CommandValue = 1000
	CmdAutoConnectEnable CommandValue = 1001
	CmdWifiConnect       CommandValue = 1002
	CmdScanningDevice    CommandValue = 1003
	CmdDeviceFound       CommandValue = 1004
	CmdDeviceNotFound    CommandValue = 1005
	CmdConnectFailed     CommandValue = 1006
	CmdBtConnected       CommandValue = 1007
	CmdBtDisconnected    CommandValue = 1008
	CmdWifiConnected     CommandValue = 1009
	CmdWifiDisconnected  CommandValue = 1010
	CmdBtPairStart       CommandValue = 1011
	CmdWifiPair          CommandValue = 1012
)

// commandNames maps command values to the key names the host API accepts.
var commandNames = map[CommandValue]string{
	CmdStartRecordAudio:  "startRecordAudio",
	CmdStopRecordAudio:   "stopRecordAudio",
	CmdRequestHostUI:     "requestHostUI",
	CmdSiri:              "siri",
	CmdMic:               "mic",
	CmdFrame:             "frame",
	CmdBoxMic:            "boxMic",
	CmdEnableNightMode:   "enableNightMode",
	CmdDisableNightMode:  "disableNightMode",
	CmdAudioTransferOn:   "audioTransferOn",
	CmdAudioTransferOff:  "audioTransferOff",
	CmdWifi24G:           "wifi24g",
	CmdWifi5G:            "wifi5g",
	CmdLeft:              "left",
	CmdRight:             "right",
	CmdSelectDown:        "selectDown",
	CmdSelectUp:          "selectUp",
	CmdBack:              "back",
	CmdUp:                "up",
	CmdDown:              "down",
	CmdHome:              "home",
	CmdPlay:              "play",
	CmdPause:             "pause",
	CmdPlayOrPause:       "playOrPause",
	CmdNext:              "next",
	CmdPrev:              "prev",
	CmdAcceptPhone:       "acceptPhone",
	CmdRejectPhone:       "rejectPhone",
	CmdRequestVideoFocus: "requestVideoFocus",
	CmdReleaseVideoFocus: "releaseVideoFocus",
	CmdWifiEnable:        "wifiEnable",
	CmdAutoConnectEnable: "autoConnectEnable",
	CmdWifiConnect:       "wifiConnect",
	CmdScanningDevice:    "scanningDevice",
	CmdDeviceFound:       "deviceFound",
	CmdDeviceNotFound:    "deviceNotFound",
	CmdConnectFailed:     "connectDeviceFailed",
	CmdBtConnected:       "btConnected",
	CmdBtDisconnected:    "btDisconnected",
	CmdWifiConnected:     "wifiConnected",
	CmdWifiDisconnected:  "wifiDisconnected",
	CmdBtPairStart:       "btPairStart",
	CmdWifiPair:          "wifiPair",
}

var commandsByName = func() map[string]CommandValue {
	m := make(map[string]CommandValue, len(commandNames))
	for v, name := range commandNames {
		m[name] = v
	}
	return m
}()

// String returns the command's key name.
func (c CommandValue) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CommandValue(%d)", uint32(c))
}

// CommandByName resolves a key name ("home", "play", "wifiPair", ...) to its
// command value. Returns false for unknown names.
func CommandByName(name string) (CommandValue, bool) {
	v, ok := commandsByName[name]
	return v, ok
}

// TouchAction is the single-touch action code.
type TouchAction uint32

const (
	TouchDown TouchAction = 14
	TouchMove TouchAction = 15
	TouchUp   TouchAction = 16
)

// String returns a human-readable action name.
func (a TouchAction) String() string {
	switch a {
	case TouchDown:
		return "down"
	case TouchMove:
		return "move"
	case TouchUp:
		return "up"
	default:
		return fmt.Sprintf("TouchAction(%d)", uint32(a))
	}
}

// TouchActionByName resolves "down"/"move"/"up" to an action code.
func TouchActionByName(name string) (TouchAction, bool) {
	switch name {
	case "down":
		return TouchDown, true
	case "move":
		return TouchMove, true
	case "up":
		return TouchUp, true
	default:
		return 0, false
	}
}

// MultiTouchAction is the per-finger action code used by MultiTouch payloads.
// Note the numbering differs from single-touch actions.
type MultiTouchAction uint32

const (
	MultiTouchUp   MultiTouchAction = 0
	MultiTouchDown MultiTouchAction = 1
	MultiTouchMove MultiTouchAction = 2
)

// LogoType selects the branding glyph the dongle shows on the phone.
type LogoType uint32

const (
	LogoHomeButton LogoType = 1
	LogoSiri       LogoType = 2
)

// File addresses the SendFile message writes to on the dongle. These are
// pseudo-paths interpreted by the dongle firmware, not host files.
const (
	FileDPI             = "/tmp/screen_dpi"
	FileNightMode       = "/tmp/night_mode"
	FileHandDriveMode   = "/tmp/hand_drive_mode"
	FileChargeMode      = "/tmp/charge_mode"
	FileBoxName         = "/etc/box_name"
	FileOEMIcon         = "/etc/oem_icon.png"
	FileAirplayConfig   = "/etc/airplay.conf"
	FileIcon120         = "/etc/icon_120x120.png"
	FileIcon180         = "/etc/icon_180x180.png"
	FileIcon256         = "/etc/icon_256x256.png"
	FileAndroidWorkMode = "/etc/android_work_mode"
)
