// Package lasconv moves points between LAS files and WLF files.
//
// LAS point formats 0 to 3 are supported. Field mapping:
//
//	| LAS                        | WLF                            |
//	|----------------------------|--------------------------------|
//	| X, Y, Z                    | X, Y, Z                        |
//	| Intensity                  | Intensity                      |
//	| return number (bits 0-2)   | ReturnNumber (at least 1)      |
//	| number of returns (3-5)    | NumberOfReturns                |
//	| edge of flight line (7)    | EdgeOfFlightLine (0 or 1)      |
//	| classification (bits 0-4)  | Classification                 |
//	| withheld (bit 7)           | Status FilterInvalid           |
//	| scan angle rank            | ScanAngle                      |
//	| user data                  | Attribute 0                    |
//	| point source ID            | PointSource                    |
//	| GPS time (formats 1, 3)    | Seconds, Nanoseconds           |
//	| RGB (formats 2, 3)         | RGB, rescaled to RGB MAX       |
//
// GPS time is taken as seconds since the Unix epoch. Points with a null Z
// have no LAS representation and are skipped on export.
package lasconv
