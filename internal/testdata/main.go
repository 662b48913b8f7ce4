package testdata

// Chart is a short chart in the structured format. At one beat per second
// and 480 ticks per beat every tick value below divided by 480 is its time
// in seconds.
//
//	id type        page time       next
//	0  click       0    1.0
//	1  hold        1    2.0 - 3.0
//	2  drag head   1    2.5        3
//	3  drag child  1    2.75       4
//	4  drag child  1    3.0
//	5  flick       2    4.5
//	6  long hold   2    5.0 - 5.5
func Chart() []byte {
	return []byte(chart)
}

// Legacy is a chart in the line format.
func Legacy() []byte {
	return []byte(legacy)
}

const chart = `{
  "format_version": 1,
  "time_base": 480,
  "music_offset": 0,
  "tempo_list": [
    {"tick": 0, "value": 1000000}
  ],
  "page_list": [
    {"start_tick": 0, "end_tick": 960, "scan_line_direction": 1},
    {"start_tick": 960, "end_tick": 1920, "scan_line_direction": -1},
    {"start_tick": 1920, "end_tick": 2880, "scan_line_direction": 1}
  ],
  "note_list": [
    {"page_index": 0, "type": 0, "id": 0, "tick": 480, "x": 0.5, "hold_tick": 0, "next_id": 0},
    {"page_index": 1, "type": 1, "id": 1, "tick": 960, "x": 0.2, "hold_tick": 480, "next_id": 0},
    {"page_index": 1, "type": 3, "id": 2, "tick": 1200, "x": 0.6, "hold_tick": 0, "next_id": 3},
    {"page_index": 1, "type": 4, "id": 3, "tick": 1320, "x": 0.7, "hold_tick": 0, "next_id": 4},
    {"page_index": 1, "type": 4, "id": 4, "tick": 1440, "x": 0.8, "hold_tick": 0, "next_id": -1},
    {"page_index": 2, "type": 5, "id": 5, "tick": 2160, "x": 0.4, "hold_tick": 0, "next_id": 0},
    {"page_index": 2, "type": 2, "id": 6, "tick": 2400, "x": 0.5, "hold_tick": 240, "next_id": 0, "approach_rate": 1.0}
  ],
  "event_order_list": [
    {"tick": 1920, "event_list": [{"type": 0, "args": "R"}]}
  ]
}
`

const legacy = `VERSION 2
BPM 120.000000
PAGE_SHIFT 0.000000
PAGE_SIZE 1.000000
NOTE 0 0.500000 0.250000 0.000000
NOTE 1 1.250000 0.500000 0.500000
NOTE 2 0.500000 0.750000 0.000000
NOTE 3 2.000000 0.300000 0.000000
NOTE 4 2.250000 0.400000 0.000000
LINK 3 4
`
