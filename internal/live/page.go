package live

import "html/template"

// indexPage is the page shell. Its script keeps a WebSocket open, replaces
// the mount point with every HTML frame, and reports events as a path of
// child indexes from the mount point.
var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>vela · {{.Name}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; }
#status { color: #888; font-size: 0.8rem; }
button { margin: 0 0.25rem; }
</style>
</head>
<body>
<p id="status">connecting</p>
<div id="vela-root"></div>
<script>
(function() {
    'use strict';

    var root = document.getElementById('vela-root');
    var status = document.getElementById('status');
    var ws = null;

    function pathOf(node) {
        var path = [];
        while (node && node !== root) {
            var parent = node.parentNode;
            if (!parent) return null;
            path.unshift(Array.prototype.indexOf.call(parent.childNodes, node));
            node = parent;
        }
        return node === root ? path : null;
    }

    function send(type, target, payload) {
        if (!ws || ws.readyState !== WebSocket.OPEN) return;
        var path = pathOf(target);
        if (path === null) return;
        ws.send(JSON.stringify({type: type, path: path, payload: payload}));
    }

    root.addEventListener('click', function(e) {
        send('click', e.target, {});
    });
    root.addEventListener('input', function(e) {
        send('input', e.target, {target: {value: e.target.value}});
    });

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '/ws');
        ws.onopen = function() { status.textContent = 'connected'; };
        ws.onmessage = function(e) {
            var msg = JSON.parse(e.data);
            if (msg.type === 'html') {
                root.innerHTML = msg.html;
            } else if (msg.type === 'error') {
                status.textContent = msg.error;
            }
        };
        ws.onclose = function() {
            status.textContent = 'disconnected, retrying';
            setTimeout(connect, 1000);
        };
    }

    connect();
})();
</script>
</body>
</html>
`))
