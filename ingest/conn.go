package ingest

import (
	"context"
	"errors"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/LuPow132/Volumetric-Interactive-Display-2025/frameslot"
)

// handleConnection runs the per-connection protocol loop:
//
//	AwaitHeader -> AwaitPayload -> AwaitHeader, ...
//
// until the peer closes cleanly, a protocol error occurs, or the caller
// closes conn on shutdown. It never holds more than one in-flight payload and touches
// nothing but conn and slot — in particular it never reaches into
// sharedframe.
//
// ctx carries no deadline of its own; its cancellation signals server
// shutdown, at which point the caller closes conn out from under a
// blocked read (there is otherwise no way to interrupt a read from an
// idle peer that never sends another byte). handleConnection uses ctx
// only to tell that expected shutdown-close apart from a genuine
// protocol error when logging.
func handleConnection(ctx context.Context, conn net.Conn, slot *frameslot.Slot, maxFrame int, log *logrus.Entry) {
	log.Info("connection accepted")
	defer conn.Close()

	for {
		payload, outcome, err := readFrame(conn, maxFrame)
		switch outcome {
		case outcomeOK:
			slot.Offer(payload)

		case outcomeClosed:
			log.Info("connection closed by peer")
			return

		case outcomeProtocolError:
			if ctx.Err() != nil {
				log.Info("connection closed: server shutting down")
				return
			}
			log.WithError(err).Warn("protocol error, closing connection")
			return

		case outcomePayloadError:
			rejected := errors.Is(err, ErrPayloadMalformed)
			if rejected {
				log.WithError(err).Warn("malformed payload, discarding frame")
			} else {
				log.WithError(err).Warn("bad gzip stream, discarding frame")
			}
			// A payload error is scoped to one frame; the connection stays
			// open for the next one.

		default:
			// Unreachable: readFrame never returns an outcome without a
			// matching case above.
			log.WithError(err).Error("unknown frame outcome")
			return
		}
	}
}
