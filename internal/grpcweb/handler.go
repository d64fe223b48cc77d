package grpcweb

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"calendar-booking-api/internal/middleware"
)

const (
	// maxBody caps a single unary grpc-web request.
	maxBody = 4 << 20

	flagData    byte = 0x00
	flagTrailer byte = 0x80

	contentBinary = "application/grpc-web+proto"
	contentText   = "application/grpc-web-text+proto"
)

// Bridge translates gRPC-Web (browser HTTP/1.1) → native gRPC. Only unary
// calls are bridged; Subscribe is served to browsers over /ws instead.
type Bridge struct {
	conn *grpc.ClientConn
	log  *logrus.Entry
}

// New dials the gRPC server at addr (e.g. "localhost:50051"). Extra dial
// options are appended after the insecure transport credentials.
func New(addr string, log *logrus.Entry, opts ...grpc.DialOption) (*Bridge, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpcweb dial: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Bridge{conn: conn, log: log.WithField("component", "grpcweb")}, nil
}

func (b *Bridge) Close() { b.conn.Close() }

// Handler returns an http.Handler that translates gRPC-Web → gRPC.
func (b *Bridge) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowCORS(w.Header(), r.Header.Get("Origin"))

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
			return
		case http.MethodPost:
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ct := r.Header.Get("Content-Type")
		if !strings.HasPrefix(ct, "application/grpc-web") {
			http.Error(w, "not grpc-web", http.StatusUnsupportedMediaType)
			return
		}
		rw := &replyWriter{w: w, text: strings.HasPrefix(ct, "application/grpc-web-text")}

		b.log.WithField("method", r.URL.Path).Debug("grpc-web call")
		b.forward(rw, r)
	})
}

func allowCORS(h http.Header, origin string) {
	if origin == "" {
		origin = "*"
	}
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers",
		"Content-Type, X-Grpc-Web, X-User-Agent, Authorization, x-grpc-web")
	h.Set("Access-Control-Expose-Headers",
		"Grpc-Status, Grpc-Message, Grpc-Status-Details-Bin, grpc-status, grpc-message")
	h.Set("Access-Control-Max-Age", "86400")
}

func (b *Bridge) forward(rw *replyWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		rw.fail(codes.Internal, "read body failed")
		return
	}
	if len(body) > maxBody {
		rw.fail(codes.ResourceExhausted, "request too large")
		return
	}
	if rw.text {
		if body, err = base64.StdEncoding.DecodeString(string(body)); err != nil {
			rw.fail(codes.InvalidArgument, "bad base64 body")
			return
		}
	}
	payload, err := readFrame(body)
	if err != nil {
		st, _ := status.FromError(err)
		rw.fail(st.Code(), st.Message())
		return
	}

	md := metadata.MD{}
	if vals := r.Header.Values("Authorization"); len(vals) > 0 {
		md.Set("authorization", vals...)
	}
	// the gRPC server sees this bridge as its peer
	md.Set(middleware.ForwardedFor, clientHost(r.RemoteAddr))
	ctx := metadata.NewOutgoingContext(r.Context(), md)

	// request bytes are already wire proto, so pass them through untouched
	resp := &rawMsg{}
	err = b.conn.Invoke(ctx, r.URL.Path, &rawMsg{data: payload}, resp, grpc.ForceCodec(rawCodec{}))
	if err != nil {
		st, _ := status.FromError(err)
		b.log.WithFields(logrus.Fields{"method": r.URL.Path, "code": st.Code().String()}).Info(st.Message())
		rw.fail(st.Code(), st.Message())
		return
	}
	rw.ok(resp.data)
}

func clientHost(remote string) string {
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}

// readFrame extracts the single message of a unary grpc-web request:
// 1-byte flag + 4-byte big-endian length + protobuf.
func readFrame(body []byte) ([]byte, error) {
	if len(body) < 5 {
		return nil, status.Error(codes.InvalidArgument, "body too short")
	}
	if body[0] != flagData {
		return nil, status.Error(codes.Unimplemented, "compressed frames not supported")
	}
	n := binary.BigEndian.Uint32(body[1:5])
	if uint64(n)+5 > uint64(len(body)) {
		return nil, status.Error(codes.InvalidArgument, "incomplete frame")
	}
	return body[5 : 5+n], nil
}

type rawMsg struct{ data []byte }

type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	return v.(*rawMsg).data, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	m := v.(*rawMsg)
	m.data = append([]byte(nil), data...)
	return nil
}

func (rawCodec) Name() string { return "proto" }

// replyWriter writes grpc-web frames, base64 encoded for the text variant.
type replyWriter struct {
	w    http.ResponseWriter
	text bool
}

func frame(flag byte, data []byte) []byte {
	f := make([]byte, 5+len(data))
	f[0] = flag
	binary.BigEndian.PutUint32(f[1:5], uint32(len(data)))
	copy(f[5:], data)
	return f
}

func (rw *replyWriter) write(frames ...[]byte) {
	ct := contentBinary
	if rw.text {
		ct = contentText
	}
	rw.w.Header().Set("Content-Type", ct)
	rw.w.WriteHeader(http.StatusOK)
	for _, f := range frames {
		if rw.text {
			f = []byte(base64.StdEncoding.EncodeToString(f))
		}
		rw.w.Write(f)
	}
}

func (rw *replyWriter) fail(code codes.Code, msg string) {
	// grpc-message is percent-encoded on the wire
	trailer := fmt.Sprintf("grpc-status:%d\r\ngrpc-message:%s\r\n", code, url.PathEscape(msg))
	rw.write(frame(flagTrailer, []byte(trailer)))
}

func (rw *replyWriter) ok(data []byte) {
	rw.write(frame(flagData, data), frame(flagTrailer, []byte("grpc-status:0\r\n")))
}
