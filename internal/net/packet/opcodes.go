package packet

// Client → server opcodes.
const (
	C_OPCODE_JOIN             byte = 1
	C_OPCODE_TELEPORT_CONFIRM byte = 2
	C_OPCODE_MOVE             byte = 3
	C_OPCODE_CHANGE_INSTANCE  byte = 4
	C_OPCODE_ATTACK           byte = 5
	C_OPCODE_INTERACT         byte = 6
	C_OPCODE_QUIT             byte = 7
)

// Server → client opcodes.
const (
	S_OPCODE_LOGIN_OK           byte = 64
	S_OPCODE_POSITION           byte = 65
	S_OPCODE_PLAYER_INFO_ADD    byte = 66
	S_OPCODE_PLAYER_INFO_REMOVE byte = 67
	S_OPCODE_SPAWN_ENTITY       byte = 68
	S_OPCODE_ENTITY_METADATA    byte = 69
	S_OPCODE_DESTROY_ENTITIES   byte = 70
)
