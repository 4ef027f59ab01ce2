// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp implements the TCP listener used by the echo and prime-check servers.
// Socket options are applied through golang.org/x/sys before bind.
package tcp
