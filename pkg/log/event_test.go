package log

import "testing"

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{DirectionIn.String(), "IN"},
		{DirectionOut.String(), "OUT"},
		{Direction(9).String(), "UNKNOWN"},
		{LayerTransport.String(), "TRANSPORT"},
		{LayerWire.String(), "WIRE"},
		{LayerSync.String(), "SYNC"},
		{Layer(9).String(), "UNKNOWN"},
		{CategoryMessage.String(), "MESSAGE"},
		{CategoryControl.String(), "CONTROL"},
		{CategoryState.String(), "STATE"},
		{CategoryError.String(), "ERROR"},
		{RoleScreen.String(), "SCREEN"},
		{RoleBridge.String(), "BRIDGE"},
		{MessageTypeRequest.String(), "REQUEST"},
		{MessageTypeResponse.String(), "RESPONSE"},
		{MessageTypeEvent.String(), "EVENT"},
		{MessageTypeHandshake.String(), "HANDSHAKE"},
		{StateEntityConnection.String(), "CONNECTION"},
		{StateEntityMessages.String(), "MESSAGES"},
		{StateEntityReader.String(), "READER"},
		{StateEntityStatus.String(), "STATUS"},
		{ControlMsgPing.String(), "PING"},
		{ControlMsgPong.String(), "PONG"},
		{ControlMsgClose.String(), "CLOSE"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	m := NewMultiLogger()
	if OrNoop(m) != Logger(m) {
		t.Error("OrNoop should return non-nil logger unchanged")
	}
}
