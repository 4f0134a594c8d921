package telemetry

import (
	"github.com/golang/protobuf/proto"
)

// Frame is one telemetry sample. Times are in milliseconds, distances
// in inches, speeds in inches per second and angles in radians.
// Predicted values come from the observer.
//
// X and Y are the observer position in the world frame: X along the
// start line, Y positive to the left, heading counter-clockwise. This
// is the mirror image of the course frame used for pursuit waypoints,
// where y grows to the right.
type Frame struct {
	TimeLeft      uint32  `protobuf:"varint,1,opt,name=time_left,proto3" json:"time_left,omitempty"`
	TimeRight     uint32  `protobuf:"varint,2,opt,name=time_right,proto3" json:"time_right,omitempty"`
	PosLeft       float32 `protobuf:"fixed32,3,opt,name=pos_left,proto3" json:"pos_left,omitempty"`
	VelLeft       float32 `protobuf:"fixed32,4,opt,name=vel_left,proto3" json:"vel_left,omitempty"`
	VelRight      float32 `protobuf:"fixed32,5,opt,name=vel_right,proto3" json:"vel_right,omitempty"`
	PosRight      float32 `protobuf:"fixed32,6,opt,name=pos_right,proto3" json:"pos_right,omitempty"`
	CmdLeft       float32 `protobuf:"fixed32,7,opt,name=cmd_left,proto3" json:"cmd_left,omitempty"`
	CmdRight      float32 `protobuf:"fixed32,8,opt,name=cmd_right,proto3" json:"cmd_right,omitempty"`
	Heading       float32 `protobuf:"fixed32,9,opt,name=heading,proto3" json:"heading,omitempty"`
	YawRate       float32 `protobuf:"fixed32,10,opt,name=yaw_rate,proto3" json:"yaw_rate,omitempty"`
	Offset        float32 `protobuf:"fixed32,11,opt,name=offset,proto3" json:"offset,omitempty"`
	X             float32 `protobuf:"fixed32,12,opt,name=x,proto3" json:"x,omitempty"`
	Y             float32 `protobuf:"fixed32,13,opt,name=y,proto3" json:"y,omitempty"`
	PredVelRight  float32 `protobuf:"fixed32,14,opt,name=pred_vel_right,proto3" json:"pred_vel_right,omitempty"`
	PredVelLeft   float32 `protobuf:"fixed32,15,opt,name=pred_vel_left,proto3" json:"pred_vel_left,omitempty"`
	PredHeading   float32 `protobuf:"fixed32,16,opt,name=pred_heading,proto3" json:"pred_heading,omitempty"`
	SpeedSetpoint float32 `protobuf:"fixed32,17,opt,name=speed_setpoint,proto3" json:"speed_setpoint,omitempty"`
	PredPosLeft   float32 `protobuf:"fixed32,18,opt,name=pred_pos_left,proto3" json:"pred_pos_left,omitempty"`
	PredPosRight  float32 `protobuf:"fixed32,19,opt,name=pred_pos_right,proto3" json:"pred_pos_right,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Frame) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Frame) Reset() { *m = Frame{} }

// String implements proto.Message.
func (m *Frame) String() string { return proto.CompactTextString(m) }

// Packet codes.
const (
	CodeFrame byte = 0x01
)

// Encoder wraps frames into packets with increasing sequence numbers.
type Encoder struct {
	seq PacketSeq
}

// NewEncoder creates an Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode encodes a frame into a packet.
func (e *Encoder) Encode(f *Frame) ([]byte, error) {
	data, err := proto.Marshal(f)
	if err != nil {
		return nil, err
	}
	e.seq = e.seq.Next()
	pkt := &Packet{Seq: e.seq, Code: CodeFrame, Data: data}
	return pkt.Bytes()
}

// DecodeFrame decodes the frame carried by a packet.
func DecodeFrame(pkt *Packet) (*Frame, error) {
	if pkt.Code != CodeFrame {
		return nil, ErrUnknownCode
	}
	f := &Frame{}
	if err := proto.Unmarshal(pkt.Data, f); err != nil {
		return nil, err
	}
	return f, nil
}
