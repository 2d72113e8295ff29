package kern

import "errors"

// Kernel error kinds. Cryptography faults live in pkg/usr, parse
// errors in pkg/unit and store faults in pkg/store; the kernel wraps
// them when they cross its boundary.
var (
	ErrMemoryOut     = errors.New("memory out")
	ErrEncode        = errors.New("encode fault")
	ErrDecode        = errors.New("decode fault")
	ErrCompression   = errors.New("compression fault")
	ErrDecompression = errors.New("decompression fault")

	ErrUsrNotFound           = errors.New("user not found")
	ErrUsrNameAlreadyReg     = errors.New("user name already registered")
	ErrUsrAlreadyReg         = errors.New("user already registered")
	ErrUsrRegWithAnotherName = errors.New("user registered with another name")

	ErrServNotFound             = errors.New("service not found")
	ErrServAlreadyReg           = errors.New("service already registered")
	ErrCannotCreateServInstance = errors.New("cannot create service instance")

	ErrTaskAlreadyReg = errors.New("task already registered")
	ErrTaskNotFound   = errors.New("task not found")

	ErrHelpTopicNotFound = errors.New("help topic not found")

	ErrDrv  = errors.New("driver fault")
	ErrServ = errors.New("service fault")
)
