/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"net"
	"strconv"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/ccnlabs/ccnd/core"
)

// NDNEtherType is the reserved EtherType used for multicast Ethernet
// faces, grounded in YaNFD's multicast-ethernet-transport.go constant
// of the same name.
const NDNEtherType layers.EthernetType = 0x8624

// EthernetFace is a multicast Ethernet face driven by a gopacket/pcap
// capture handle. pcap's own blocking capture loop cannot be
// unix.Poll-ed alongside the daemon's other fds, so this face is
// bridged: a background goroutine drains packets and hands finished
// frames to the I/O loop over Face.bridgeIn, and outbound frames are
// written from the I/O loop's own goroutine via Face.bridgeOut, which
// is the only part of this file allowed to touch pcap concurrently
// with the receive goroutine (spec.md §5's single-daemon-state rule
// binds only forwarding state, not this transport's own handle).
type EthernetFace struct {
	handle     *pcap.Handle
	remoteAddr net.HardwareAddr
	localAddr  net.HardwareAddr
	quit       chan struct{}
}

// NewEthernetFace opens a multicast Ethernet face on ifaceName framed
// to remoteMAC, grounded in MakeMulticastEthernetTransport: an inactive
// pcap handle is configured with a one-minute read timeout, activated,
// and filtered to only the reserved EtherType and destination MAC this
// face cares about.
func NewEthernetFace(ifaceName string, remoteMAC net.HardwareAddr) (*Face, *EthernetFace, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, nil, err
	}

	inactive, err := pcap.NewInactiveHandle(ifaceName)
	if err != nil {
		return nil, nil, err
	}
	if err := inactive.SetTimeout(time.Minute); err != nil {
		return nil, nil, err
	}
	handle, err := inactive.Activate()
	if err != nil {
		return nil, nil, err
	}
	filter := "ether proto " + strconv.Itoa(int(NDNEtherType)) + " and ether dst " + remoteMAC.String()
	if err := handle.SetBPFFilter(filter); err != nil {
		handle.Close()
		return nil, nil, err
	}

	ef := &EthernetFace{
		handle:     handle,
		remoteAddr: remoteMAC,
		localAddr:  iface.HardwareAddr,
		quit:       make(chan struct{}, 1),
	}

	f := &Face{
		Fd:           -1,
		Kind:         KindEthernet,
		IsDatagram:   true,
		IsLinkFramed: true,
		bridgeIn:     make(chan []byte, 64),
		bridgeOut:    ef.send,
		closeFn:      ef.close,
	}
	go ef.runReceive(f.bridgeIn)
	return f, ef, nil
}

// send wraps frame in an Ethernet header and writes it to the pcap
// handle, mirroring sendFrame's serialize-then-WritePacketData shape.
func (ef *EthernetFace) send(frame []byte) error {
	eth := layers.Ethernet{SrcMAC: ef.localAddr, DstMAC: ef.remoteAddr, EthernetType: NDNEtherType}
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, &eth, gopacket.Payload(frame)); err != nil {
		return err
	}
	return ef.handle.WritePacketData(buf.Bytes())
}

// runReceive drains the pcap packet source until told to quit,
// stripping the Ethernet header and forwarding the NDN payload to the
// I/O loop, grounded in runReceive's select-over-packets-and-quit loop.
func (ef *EthernetFace) runReceive(out chan<- []byte) {
	source := gopacket.NewPacketSource(ef.handle, ef.handle.LinkType())
	for {
		select {
		case packet, ok := <-source.Packets():
			if !ok {
				return
			}
			link := packet.LinkLayer()
			if link == nil {
				core.LogInfo("ethernet-face", "received frame with no link layer - drop")
				continue
			}
			payload := append([]byte{}, link.LayerPayload()...)
			select {
			case out <- payload:
			default:
				core.LogWarn("ethernet-face", "bridge channel full - drop")
			}
		case <-ef.quit:
			return
		}
	}
}

func (ef *EthernetFace) close() {
	select {
	case ef.quit <- struct{}{}:
	default:
	}
	ef.handle.Close()
}
