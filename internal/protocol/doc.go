// Package protocol implements the connection engine of the XML command
// protocol spoken by the vulnerability manager.
//
// The protocol frames exactly one XML request and one XML reply over a
// bidirectional byte stream. There is no length prefix: a reply ends when
// the first element the server opened is closed again. This package finds
// that boundary incrementally and enforces strict request/response
// alternation. It performs no I/O; the caller owns the transport.
//
// # Overview
//
// A Connection is a small state machine:
//
//	Initial --Send--> AwaitingResponse --ReceiveData--> ReceivingData
//	   ^                                                     |
//	   +----------------- reply complete --------------------+
//
// A parse error moves the connection to the Error state, which rejects
// everything except Close. Close is accepted in every state and always
// returns the connection to Initial.
//
// # Basic Usage
//
//	conn := protocol.NewConnection()
//
//	payload, err := conn.Send(protocol.RawRequest(`<get_version/>`))
//	if err != nil {
//	    return err
//	}
//	if _, err := transport.Write(payload); err != nil {
//	    conn.Close()
//	    return err
//	}
//
//	buf := make([]byte, 32*1024)
//	for {
//	    n, err := transport.Read(buf)
//	    if err != nil {
//	        conn.Close()
//	        return err
//	    }
//	    resp, err := conn.ReceiveData(buf[:n])
//	    if err != nil {
//	        conn.Close()
//	        return err
//	    }
//	    if resp != nil {
//	        return handle(resp)
//	    }
//	}
//
// # Responses
//
// A Response keeps the raw reply bytes. The XML tree is only built when
// XML is called, and the status attribute of the root element is scanned
// without building the tree. Both are memoized.
//
// # Errors
//
//   - InvalidStateError: an operation the current state does not accept
//   - ParseError: the reply stream is not well-formed XML
//   - StatusError: a well-formed reply whose status is outside 200..299
//
// All of them carry an errors.ErrorCode from the internal/errors package.
package protocol
