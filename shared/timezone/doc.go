// Package timezone owns the process default timezone and provides helpers
// that work in the application timezone.
//
// Usage Examples:
//
//  1. Setting the process default once, before anything else starts:
//     loc, err := timezone.SetDefault("Asia/Kolkata")
//
//  2. Basic usage after initialization:
//     now := timezone.Now()                    // Get current time in app timezone
//     appTime := timezone.ToAppTime(someTime)  // Convert any time to app timezone
//
//  3. Formatting times in app timezone:
//     formatted := timezone.Format(time.Now(), "2006-01-02 15:04:05")
//
//  4. Parsing times in app timezone:
//     t, err := timezone.Parse("2006-01-02", "2024-01-01")
//
//  5. Getting the timezone location:
//     loc := timezone.GetLocation()
//
// Supported timezone formats:
// - Standard IANA timezone names only: "UTC", "Asia/Kolkata", "America/New_York", "Europe/London"
//
// The IANA database is embedded in the binary, so resolution does not depend
// on the zoneinfo files of the host.
package timezone
