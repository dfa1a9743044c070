package util

// Envelope matches the response contract the frontend reads:
// failures carry {"status":"fail","message":...}, successes carry
// {"status":"success","data":{...}}.
type Envelope map[string]any

func Fail(message string) Envelope {
	return Envelope{"status": "fail", "message": message}
}

func Success(data Envelope) Envelope {
	return Envelope{"status": "success", "data": data}
}
