package param

// Register constants shared across tables and the mirror/dispatcher
// packages, grounded in the register offsets hard-coded throughout
// oscmix.c/oscnode_tree.c.
const (
	RegRefreshTrigger uint16 = 0x3e04
	RegRefreshValue int = 0x67cd
	RegRefreshEnd uint16 = 0x2fc0

	inputBase uint16 = 0x0000
	inputStep uint16 = 0x0040
	outputBase uint16 = 0x0500
	outputStep uint16 = 0x0040
	mixBase uint16 = 0x2000
	mixOutStep uint16 = 0x0040
	mixInStep uint16 = 0x0001
	// mixSummaryOffset separates each Mix cell's derived dB/pan summary
	// registers from its four cross-term leg registers; the widest cell's
	// legs sit at mixBase+7*mixOutStep+7*mixInStep, well under this offset.
	mixSummaryOffset uint16 = 0x1000

	clockSourceReg uint16 = 0x3064

	durecBase uint16 = 0x3e00
)

// NewFirefaceUCXII builds the static ParameterTree for an 8-in/8-out
// RME Fireface-class device: system clock controls, per-input and
// per-output channel strips, an 8x8 stereo mixer, and the onboard USB
// recorder (DURec) status block. Register offsets follow the device map
// referenced throughout oscnode_tree.c/oscmix.c (input stride 0x40,
// output base 0x500 stride 0x40, mixer base 0x2000 with 0x40-per-output
// and 0x1-per-input strides).
func NewFirefaceUCXII() *Tree {
	return &Tree{
		Model: "Fireface UCX II",
		Root: []*Node{
			systemNode(),
			clockNode(),
			inputGroupNode(8),
			outputGroupNode(8),
			mixerGroupNode(8, 8),
			durecNode(),
		},
	}
}

func systemNode() *Node {
	return &Node{Name: "system", Children: []*Node{
		{Name: "samplerate", Leaf: &Leaf{Path: "/system/samplerate", Register: 0x8000, Type: Enum("44100", "48000", "88200", "96000")}},
		{Name: "buffersize", Leaf: &Leaf{Path: "/system/buffersize", Register: 0x8004, Type: Enum("32", "64", "128", "256", "512", "1024")}},
	}}
}

func clockNode() *Node {
	return &Node{Name: "clock", Children: []*Node{
		{Name: "source", Leaf: &Leaf{Path: "/clock/source", Register: clockSourceReg, Type: Enum("Internal", "AES", "ADAT", "Sync In")}},
	}}
}

func inputGroupNode(n int) *Node {
	return &Node{
		Name: "input",
		Count: n,
		RegisterStride: inputStep,
		Children: []*Node{
			{Name: "gain", Leaf: &Leaf{Path: "/input/%d/gain", Register: inputBase + 0x08, Type: Fixed(0, 750, 0.1)}},
			{Name: "mute", Leaf: &Leaf{Path: "/input/%d/mute", Register: inputBase + 0x02, Type: Bool()}},
			{Name: "phantom", Leaf: &Leaf{Path: "/input/%d/phantom", Register: inputBase + 0x04, Type: Bool()}},
			{Name: "reflevel", Leaf: &Leaf{Path: "/input/%d/reflevel", Register: inputBase + 0x09, Type: Enum("+4dBu", "+13dBu", "+19dBu")}},
			{Name: "hiz", Leaf: &Leaf{Path: "/input/%d/hiz", Register: inputBase + 0x06, Type: Bool()}},
		},
	}
}

func outputGroupNode(n int) *Node {
	return &Node{
		Name: "output",
		RegisterStride: outputStep,
		Count: n,
		Children: []*Node{
			{Name: "volume", Leaf: &Leaf{Path: "/output/%d/volume", Register: outputBase + 0x00, Type: Fixed(-650, 60, 0.1)}},
			{Name: "mute", Leaf: &Leaf{Path: "/output/%d/mute", Register: outputBase + 0x02, Type: Bool()}},
			{Name: "reflevel", Leaf: &Leaf{Path: "/output/%d/reflevel", Register: outputBase + 0x09, Type: Enum("+4dBu", "+13dBu", "+19dBu")}},
		},
	}
}

// mixerGroupNode builds the nOut x nIn stereo mixer: "/mix/<out>/input/<in>"
// each a Mix composite leaf whose register is the cross-term base for that
// cell.
func mixerGroupNode(nOut, nIn int) *Node {
	return &Node{
		Name: "mix",
		Count: nOut,
		RegisterStride: mixOutStep,
		Children: []*Node{
			{
				Name: "input",
				Count: nIn,
				RegisterStride: mixInStep,
				Leaf: &Leaf{Path: "/mix/%d/input/%d", Register: mixBase, Type: Mix()},
			},
		},
	}
}

func durecNode() *Node {
	return &Node{Name: "durec", Children: []*Node{
		{Name: "status", Leaf: &Leaf{Path: "/durec/status", Register: durecBase + 0x00, Type: Enum("No Media", "Filesystem Error", "Initializing", "Stopped", "Recording", "Playing", "Paused", "Recording+Playing")}},
		{Name: "position", Leaf: &Leaf{Path: "/durec/position", Register: durecBase + 0x01, Type: Int(0, 100)}},
		{Name: "time", Leaf: &Leaf{Path: "/durec/time", Register: durecBase + 0x02, Type: Int(0, 0x7fff)}},
		{Name: "usbload", Leaf: &Leaf{Path: "/durec/usbload", Register: durecBase + 0x03, Type: Int(0, 100)}},
		{Name: "totalspace", Leaf: &Leaf{Path: "/durec/totalspace", Register: durecBase + 0x04, Type: Int(0, 0x7fff)}},
		{Name: "freespace", Leaf: &Leaf{Path: "/durec/freespace", Register: durecBase + 0x05, Type: Int(0, 0x7fff)}},
		{Name: "numfiles", Leaf: &Leaf{Path: "/durec/numfiles", Register: durecBase + 0x06, Type: Int(0, 0x7fff)}},
		{Name: "file", Count: 64, RegisterStride: 0x06, Children: []*Node{
			{Name: "name", Leaf: &Leaf{Path: "/durec/file/%d/name", Register: durecBase + 0x10, Type: Str(32)}},
			{Name: "samplerate", Leaf: &Leaf{Path: "/durec/file/%d/samplerate", Register: durecBase + 0x11, Type: Int(0, 192000)}},
			{Name: "channels", Leaf: &Leaf{Path: "/durec/file/%d/channels", Register: durecBase + 0x12, Type: Int(0, 32)}},
			{Name: "length", Leaf: &Leaf{Path: "/durec/file/%d/length", Register: durecBase + 0x13, Type: Int(0, 0x7fffffff)}},
		}},
	}}
}
