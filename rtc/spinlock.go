/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package rtc

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// nonBlockingLocker marks locks safe for call sites that can run in a
// context where sleeping is illegal, such as a timer callback. Only
// busy-wait locks satisfy it; sync.Mutex deliberately cannot. The
// Accumulator guard is the concrete SpinLock, so swapping in a sleeping
// lock would not compile.
type nonBlockingLocker interface {
	sync.Locker
	// TryLock acquires the lock without waiting, reporting success.
	TryLock() bool
	nonBlocking()
}

// SpinLock is a busy-wait mutual exclusion lock. The zero value is unlocked.
//
// Critical sections guarded by it must be short and must not block; under
// contention waiters spin, yielding the processor between attempts, but
// never sleep.
type SpinLock struct {
	state atomic.Uint32
}

// Lock acquires the lock, spinning until it is free.
func (l *SpinLock) Lock() {
	for !l.state.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

// TryLock acquires the lock if it is free, without waiting.
func (l *SpinLock) TryLock() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Unlock releases the lock. Unlocking an unlocked SpinLock is a bug.
func (l *SpinLock) Unlock() {
	if l.state.Swap(0) != 1 {
		panic("rtc: unlock of unlocked SpinLock")
	}
}

func (l *SpinLock) nonBlocking() {}

var _ nonBlockingLocker = (*SpinLock)(nil)
