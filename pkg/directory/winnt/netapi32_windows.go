//go:build windows

package winnt

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modNetapi32 = windows.NewLazySystemDLL("netapi32.dll")

	procNetLocalGroupGetMembers = modNetapi32.NewProc("NetLocalGroupGetMembers")
	procNetLocalGroupAddMembers = modNetapi32.NewProc("NetLocalGroupAddMembers")
	procNetLocalGroupDelMembers = modNetapi32.NewProc("NetLocalGroupDelMembers")
)

// MAX_PREFERRED_LENGTH asks the API to size the result buffer itself.
const MAX_PREFERRED_LENGTH = 0xFFFFFFFF

// Possible errors returned by local group management functions.
// Error code enumerations taken from MS-ERREF documentation:
// https://msdn.microsoft.com/en-us/library/cc231196.aspx
const (
	NERR_GroupNotFound syscall.Errno = 2220 // 0x000008AC

	ERROR_MEMBER_NOT_IN_ALIAS syscall.Errno = 1377 // 0x00000561
	ERROR_MEMBER_IN_ALIAS     syscall.Errno = 1378 // 0x00000562
	ERROR_NO_SUCH_MEMBER      syscall.Errno = 1387 // 0x0000056B
	ERROR_INVALID_MEMBER      syscall.Errno = 1388 // 0x0000056C
	ERROR_NONE_MAPPED         syscall.Errno = 1332 // 0x00000534
)

// LOCALGROUP_MEMBERS_INFO_0 represents level 0 membership information:
// the member's SID and nothing else.
// This struct matches the struct definition in the Windows headers (lmaccess.h).
type LOCALGROUP_MEMBERS_INFO_0 struct {
	Lgrmi0_sid *windows.SID
}

// LOCALGROUP_MEMBERS_INFO_3 represents level 3 membership information:
// the member's domain-qualified account name.
// This struct matches the struct definition in the Windows headers (lmaccess.h).
type LOCALGROUP_MEMBERS_INFO_3 struct {
	Lgrmi3_domainandname *uint16
}

// netLocalGroupGetMembers snapshots the group's membership at level 0.
// The returned buffer must be released with windows.NetApiBufferFree.
func netLocalGroupGetMembers(group *uint16, buf **byte, entriesRead, totalEntries *uint32) error {
	ret, _, _ := procNetLocalGroupGetMembers.Call(
		uintptr(0), // local server
		uintptr(unsafe.Pointer(group)),
		uintptr(0), // level 0: SIDs
		uintptr(unsafe.Pointer(buf)),
		uintptr(uint32(MAX_PREFERRED_LENGTH)),
		uintptr(unsafe.Pointer(entriesRead)),
		uintptr(unsafe.Pointer(totalEntries)),
		uintptr(0), // no resume handle: one-shot snapshot
	)
	if ret != 0 {
		return syscall.Errno(ret)
	}
	return nil
}

// netLocalGroupAddMemberByName adds one member at level 3 (by
// domain-qualified name).
func netLocalGroupAddMemberByName(group *uint16, rec *LOCALGROUP_MEMBERS_INFO_3) error {
	ret, _, _ := procNetLocalGroupAddMembers.Call(
		uintptr(0),
		uintptr(unsafe.Pointer(group)),
		uintptr(3),
		uintptr(unsafe.Pointer(rec)),
		uintptr(1),
	)
	if ret != 0 {
		return syscall.Errno(ret)
	}
	return nil
}

// netLocalGroupDelMemberByName removes one member at level 3 (by
// domain-qualified name).
func netLocalGroupDelMemberByName(group *uint16, rec *LOCALGROUP_MEMBERS_INFO_3) error {
	ret, _, _ := procNetLocalGroupDelMembers.Call(
		uintptr(0),
		uintptr(unsafe.Pointer(group)),
		uintptr(3),
		uintptr(unsafe.Pointer(rec)),
		uintptr(1),
	)
	if ret != 0 {
		return syscall.Errno(ret)
	}
	return nil
}

// netLocalGroupDelMemberBySID removes one member at level 0 (by SID).
// Needed for orphaned members whose SID no longer maps to a name.
func netLocalGroupDelMemberBySID(group *uint16, rec *LOCALGROUP_MEMBERS_INFO_0) error {
	ret, _, _ := procNetLocalGroupDelMembers.Call(
		uintptr(0),
		uintptr(unsafe.Pointer(group)),
		uintptr(0),
		uintptr(unsafe.Pointer(rec)),
		uintptr(1),
	)
	if ret != 0 {
		return syscall.Errno(ret)
	}
	return nil
}
