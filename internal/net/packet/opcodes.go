package packet

// Client → server opcodes.
const (
	C_OPCODE_AUTH    byte = 1 // password\0
	C_OPCODE_STATUS  byte = 2
	C_OPCODE_START   byte = 3
	C_OPCODE_STOP    byte = 4
	C_OPCODE_CLEANUP byte = 5
)

// Server → client opcodes.
const (
	S_OPCODE_HELLO          byte = 100 // H version, D session id, S server name
	S_OPCODE_AUTH_RESULT    byte = 101 // C ok
	S_OPCODE_STATUS         byte = 102
	S_OPCODE_DENIED         byte = 103 // C rejected opcode
	S_OPCODE_WAVE_STARTED   byte = 110
	S_OPCODE_ENEMY_SPAWNED  byte = 111
	S_OPCODE_WAVE_COMPLETED byte = 112
)
