// Package normalize turns the backend's loosely shaped JSON bodies into a
// single classification: success with payload, explicit failure, or
// ambiguous.
//
// The backend answers HTTP 200 for most outcomes and signals the result in
// the body. Rules apply in order, first match wins:
//
//  1. a "success" field (true = success, anything else = failure);
//  2. a token at token, access_token, data.token, data.access_token or
//     data_set.token (older response shape);
//  3. a "description" string, judged by [IsSuccessDescription];
//  4. otherwise ambiguous, with the raw body kept for diagnosis.
//
// # What this package must NOT do
//
//   - Perform I/O, logging or store writes. Callers own side effects.
//   - Apply the login role gate.
package normalize
