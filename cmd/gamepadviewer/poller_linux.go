//go:build linux

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ============================================================================
// evdev poller
// ============================================================================
//
// One goroutine waits on an epoll set holding every open gamepad and folds
// their events into per-device state. Poll only copies that state, so it never
// blocks on the device.
//
// Devices are opened on first poll. After a read error or hangup the device
// is closed and reported invalid; a later poll reopens it (rate-limited).
//
// ============================================================================

const (
	evdevReopenInterval = time.Second
	epollWaitMS         = 100
)

type evdevDevice struct {
	path string

	// Guarded by evdevPoller.mu.
	fd         int // -1 when closed
	lastOpenAt time.Time

	// Guarded by evdevPoller.mu.
	pad *evdevGamepad
}

type evdevPoller struct {
	logger *slog.Logger
	clock  tickClock

	epfd int
	stop chan struct{}
	done chan struct{}

	mu      sync.Mutex
	devices []*evdevDevice
	byFD    map[int]*evdevDevice
}

// newPlatformPoller returns the evdev poller, or a disconnected poller when
// no devices are configured.
func newPlatformPoller(cfg ControllerConfig, logger *slog.Logger) (ControllerPoller, error) {
	if len(cfg.EvdevDevices) == 0 {
		logger.Warn("no controller.evdev_devices configured; controller will show as disconnected")
		return newDisconnectedPoller(), nil
	}
	return newEvdevPoller(cfg.EvdevDevices, logger)
}

func newEvdevPoller(paths []string, logger *slog.Logger) (*evdevPoller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}

	p := &evdevPoller{
		logger: logger,
		clock:  newTickClock(),
		epfd:   epfd,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		byFD:   make(map[int]*evdevDevice),
	}
	for _, path := range paths {
		p.devices = append(p.devices, &evdevDevice{path: ExpandPath(path), fd: -1})
	}

	go p.readLoop()
	return p, nil
}

// Poll returns the latest folded state of device controllerID.
func (p *evdevPoller) Poll(controllerID int) ControllerSnapshot {
	snap := ControllerSnapshot{PollTimeMS: p.clock.NowMS()}
	if controllerID < 0 || controllerID >= len(p.devices) {
		return snap
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	dev := p.devices[controllerID]
	if dev.fd < 0 && !p.openLocked(dev) {
		return snap
	}

	st, packet := dev.pad.State()
	snap.Buttons = st.Buttons
	snap.LeftTrigger = st.LeftTrigger
	snap.RightTrigger = st.RightTrigger
	snap.ThumbLX = st.ThumbLX
	snap.ThumbLY = st.ThumbLY
	snap.ThumbRX = st.ThumbRX
	snap.ThumbRY = st.ThumbRY
	snap.PacketNumber = packet
	snap.Valid = true
	return snap
}

// openLocked opens dev and adds it to the epoll set. p.mu must be held.
func (p *evdevPoller) openLocked(dev *evdevDevice) bool {
	now := time.Now()
	if !dev.lastOpenAt.IsZero() && now.Sub(dev.lastOpenAt) < evdevReopenInterval {
		return false
	}
	dev.lastOpenAt = now

	fd, err := unix.Open(dev.path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		p.logger.Debug("open gamepad failed", "device", dev.path, "error", err)
		return false
	}

	ranges := make(map[uint16]absRange, len(gamepadAxes))
	for _, code := range gamepadAxes {
		if info, err := getAbsInfo(fd, code); err == nil {
			ranges[code] = absRange{Min: info.Minimum, Max: info.Maximum}
		}
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		p.logger.Warn("epoll_ctl add failed", "device", dev.path, "error", err)
		_ = unix.Close(fd)
		return false
	}

	dev.fd = fd
	dev.pad = newEvdevGamepad(ranges)
	p.byFD[fd] = dev
	p.logger.Info("gamepad opened", "device", dev.path)
	return true
}

// closeLocked removes dev from the epoll set and closes it. p.mu must be held.
func (p *evdevPoller) closeLocked(dev *evdevDevice, reason error) {
	if dev.fd < 0 {
		return
	}
	_ = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, dev.fd, nil)
	_ = unix.Close(dev.fd)
	delete(p.byFD, dev.fd)
	dev.fd = -1
	dev.pad = nil
	if reason != nil {
		p.logger.Warn("gamepad closed", "device", dev.path, "error", reason)
	}
}

func (p *evdevPoller) readLoop() {
	defer close(p.done)

	events := make([]unix.EpollEvent, 8)
	buf := make([]byte, inputEventSize*64)

	for {
		select {
		case <-p.stop:
			return
		default:
		}

		// Bounded wait so stop is noticed.
		n, err := unix.EpollWait(p.epfd, events, epollWaitMS)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			p.logger.Error("epoll_wait failed; gamepad input stopped", "error", err)
			return
		}

		for i := 0; i < n; i++ {
			p.service(int(events[i].Fd), events[i].Events, buf)
		}
	}
}

// service drains one ready device.
func (p *evdevPoller) service(fd int, flags uint32, buf []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dev, ok := p.byFD[fd]
	if !ok {
		return
	}

	for {
		m, err := unix.Read(fd, buf)
		if errors.Is(err, unix.EAGAIN) {
			break
		}
		if err != nil {
			p.closeLocked(dev, fmt.Errorf("read: %w", err))
			return
		}
		if m == 0 {
			p.closeLocked(dev, errors.New("read: EOF"))
			return
		}
		for _, ev := range parseInputEvents(buf[:m]) {
			dev.pad.Apply(ev)
		}
	}

	if flags&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		p.closeLocked(dev, errors.New("device error/hangup"))
	}
}

// Close stops the reader and closes every device.
func (p *evdevPoller) Close() error {
	close(p.stop)
	<-p.done

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, dev := range p.devices {
		p.closeLocked(dev, nil)
	}
	return unix.Close(p.epfd)
}

// ============================================================================
// ioctl helpers
// ============================================================================

// ioctl request encoding (Linux _IOC macro)
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocRead = 2
)

func ioc(dir, typ, nr, size uint32) uintptr {
	return uintptr((dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift))
}

// EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo)
func evioCGAbs(code uint16) uintptr {
	return ioc(iocRead, uint32('E'), uint32(0x40+code), uint32(unsafe.Sizeof(absInfo{})))
}

// absInfo is struct input_absinfo.
type absInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

func getAbsInfo(fd int, code uint16) (absInfo, error) {
	var info absInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), evioCGAbs(code), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return absInfo{}, errno
	}
	return info, nil
}
