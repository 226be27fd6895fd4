package protocol

import "fmt"

// MsgType identifies the payload shape of a message. The same numeric space
// is used in both directions; a few values (Open/Opened, AudioData) mean
// different shapes depending on direction.
type MsgType uint32

// Message type constants (verified against dongle captures).
const (
	MsgOpen                MsgType = 0x01 // outgoing Open config / incoming Opened ack
	MsgPlugged             MsgType = 0x02
	MsgPhase               MsgType = 0x03
	MsgUnplugged           MsgType = 0x04
	MsgTouch               MsgType = 0x05
	MsgVideoData           MsgType = 0x06
	MsgAudioData           MsgType = 0x07
	MsgCommand             MsgType = 0x08
	MsgLogoType            MsgType = 0x09
	MsgBluetoothAddress    MsgType = 0x0A
	MsgBluetoothPIN        MsgType = 0x0C
	MsgBluetoothDeviceName MsgType = 0x0D
	MsgWifiDeviceName      MsgType = 0x0E
	MsgDisconnectPhone     MsgType = 0x0F
	MsgBluetoothPairedList MsgType = 0x12
	MsgManufacturerInfo    MsgType = 0x14
	MsgCloseDongle         MsgType = 0x15
	MsgMultiTouch          MsgType = 0x17
	MsgHiCarLink           MsgType = 0x18
	MsgBoxSettings         MsgType = 0x19
	MsgWifiMacAddress      MsgType = 0x23
	MsgBluetoothMacAddress MsgType = 0x24
	MsgEthernetMacAddress  MsgType = 0x26
	MsgMediaData           MsgType = 0x2A
	MsgSendFile            MsgType = 0x99
	MsgHeartBeat           MsgType = 0xAA
	MsgSoftwareVersion     MsgType = 0xCC
)

var msgTypeNames = map[MsgType]string{
	MsgOpen:                "Open",
	MsgPlugged:             "Plugged",
	MsgPhase:               "Phase",
	MsgUnplugged:           "Unplugged",
	MsgTouch:               "Touch",
	MsgVideoData:           "VideoData",
	MsgAudioData:           "AudioData",
	MsgCommand:             "Command",
	MsgLogoType:            "LogoType",
	MsgBluetoothAddress:    "BluetoothAddress",
	MsgBluetoothPIN:        "BluetoothPIN",
	MsgBluetoothDeviceName: "BluetoothDeviceName",
	MsgWifiDeviceName:      "WifiDeviceName",
	MsgDisconnectPhone:     "DisconnectPhone",
	MsgBluetoothPairedList: "BluetoothPairedList",
	MsgManufacturerInfo:    "ManufacturerInfo",
	MsgCloseDongle:         "CloseDongle",
	MsgMultiTouch:          "MultiTouch",
	MsgHiCarLink:           "HiCarLink",
	MsgBoxSettings:         "BoxSettings",
	MsgWifiMacAddress:      "WifiMacAddress",
	MsgBluetoothMacAddress: "BluetoothMacAddress",
	MsgEthernetMacAddress:  "EthernetMacAddress",
	MsgMediaData:           "MediaData",
	MsgSendFile:            "SendFile",
	MsgHeartBeat:           "HeartBeat",
	MsgSoftwareVersion:     "SoftwareVersion",
}

// String returns a human-readable message type name.
func (t MsgType) String() string {
	if name, ok := msgTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%02x)", uint32(t))
}

// PhoneType identifies the kind of mirrored phone session the dongle paired.
type PhoneType uint32

const (
	PhoneAndroidMirror PhoneType = 1
	PhoneCarPlay       PhoneType = 3
	PhoneIPhoneMirror  PhoneType = 4
	PhoneAndroidAuto   PhoneType = 5
	PhoneHiCar         PhoneType = 6
)

// String returns a human-readable phone type name.
func (p PhoneType) String() string {
	switch p {
	case PhoneAndroidMirror:
		return "AndroidMirror"
	case PhoneCarPlay:
		return "CarPlay"
	case PhoneIPhoneMirror:
		return "iPhoneMirror"
	case PhoneAndroidAuto:
		return "AndroidAuto"
	case PhoneHiCar:
		return "HiCar"
	default:
		return fmt.Sprintf("PhoneType(%d)", uint32(p))
	}
}

// AudioCommand values arrive in 1-byte AudioData payloads and control the
// host's audio routing (Siri, phone calls, navigation prompts).
type AudioCommand uint8

const (
	AudioOutputStart    AudioCommand = 1
	AudioOutputStop     AudioCommand = 2
	AudioInputConfig    AudioCommand = 3
	AudioPhonecallStart AudioCommand = 4
	AudioPhonecallStop  AudioCommand = 5
	AudioNaviStart      AudioCommand = 6
	AudioNaviStop       AudioCommand = 7
	AudioSiriStart      AudioCommand = 8
	AudioSiriStop       AudioCommand = 9
	AudioMediaStart     AudioCommand = 10
	AudioMediaStop      AudioCommand = 11
	AudioAlertStart     AudioCommand = 12
	AudioAlertStop      AudioCommand = 13
)

var audioCommandNames = map[AudioCommand]string{
	AudioOutputStart:    "AudioOutputStart",
	AudioOutputStop:     "AudioOutputStop",
	AudioInputConfig:    "AudioInputConfig",
	AudioPhonecallStart: "AudioPhonecallStart",
	AudioPhonecallStop:  "AudioPhonecallStop",
	AudioNaviStart:      "AudioNaviStart",
	AudioNaviStop:       "AudioNaviStop",
	AudioSiriStart:      "AudioSiriStart",
	AudioSiriStop:       "AudioSiriStop",
	AudioMediaStart:     "AudioMediaStart",
	AudioMediaStop:      "AudioMediaStop",
	AudioAlertStart:     "AudioAlertStart",
	AudioAlertStop:      "AudioAlertStop",
}

// String returns a human-readable audio command name.
func (c AudioCommand) String() string {
	if name, ok := audioCommandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("AudioCommand(%d)", uint8(c))
}

// MediaType discriminates MediaData payloads.
type MediaType uint32

const (
	MediaTypeData       MediaType = 1 // UTF-8 JSON metadata blob
	MediaTypeAlbumCover MediaType = 3 // raw image bytes
)

// AudioFormat describes the PCM stream a decode type code maps to.
type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// audioFormats maps the dongle's decode type codes to PCM parameters.
// All streams are signed 16-bit little-endian.
var audioFormats = map[uint32]AudioFormat{
	1: {SampleRate: 44100, Channels: 2, BitDepth: 16},
	2: {SampleRate: 44100, Channels: 2, BitDepth: 16},
	3: {SampleRate: 8000, Channels: 1, BitDepth: 16},
	4: {SampleRate: 48000, Channels: 2, BitDepth: 16},
	5: {SampleRate: 16000, Channels: 1, BitDepth: 16},
	6: {SampleRate: 24000, Channels: 1, BitDepth: 16},
	7: {SampleRate: 16000, Channels: 2, BitDepth: 16},
}

// AudioFormatFor resolves a decode type code to its PCM parameters.
// Returns false for codes the dongle is not known to emit.
func AudioFormatFor(decodeType uint32) (AudioFormat, bool) {
	f, ok := audioFormats[decodeType]
	return f, ok
}
