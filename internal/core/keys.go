package core

// Key codes used by the sandbox. Values match GLFW so the desktop host needs no
// translation table; the headless host accepts the same codes in its scripts.
const (
	KeySpace  = 32
	Key0      = 48
	Key1      = 49
	Key2      = 50
	Key3      = 51
	KeyA      = 65
	KeyC      = 67
	KeyD      = 68
	KeyN      = 78
	KeyP      = 80
	KeyR      = 82
	KeyS      = 83
	KeyW      = 87
	KeyEscape = 256
	KeyEnter  = 257
	KeyTab    = 258
	KeyRight  = 262
	KeyLeft   = 263
	KeyDown   = 264
	KeyUp     = 265
	KeyF1     = 290
	KeyF2     = 291
	KeyF3     = 292
	KeyF4     = 293
	KeyF5     = 294
	KeyF6     = 295
	KeyF7     = 296
	KeyF8     = 297
)

// Mouse buttons.
const (
	ButtonLeft   = 0
	ButtonRight  = 1
	ButtonMiddle = 2
)
