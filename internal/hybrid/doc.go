// Package hybrid はライセンスファイルのハイブリッド暗号を実装する。
//
// 共通鍵（AES-128）でペイロードを暗号化し、共通鍵はRSAの秘密指数で
// PKCS#1 v1.5（ブロックタイプ1）パディングを付けてラップする。
// 開封側は公開指数で共通鍵を復元する。
//
// 既知の弱点:
//   - 鍵の役割が通常の機密性用途と逆であり、公開鍵の保持者も正しくラップされた
//     鍵を作れるため、パディング検証は暗号学的な完全性保証ではない。
//   - ペイロードはAES/ECB/PKCS5Paddingで暗号化され、IVを持たない。
//
// どちらも既存のライセンスファイルとの互換性のために維持している。
// 認証付き暗号への置き換えはPayloadCipherの差し替えで行う。
package hybrid
